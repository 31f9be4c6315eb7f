// Package tui is the interactive console: type a query, walk the ranked
// presets, compile the highlighted one.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"synthgraph/internal/compiler"
	"synthgraph/internal/domain"
)

// CompilerPort is the TUI-facing subset of the pipeline.
type CompilerPort interface {
	CompilePreset(ctx context.Context, presetID, query string, opts compiler.Options) (*compiler.Result, error)
}

// Model is the Bubble Tea model for the console.
type Model struct {
	index     domain.SearchIndex
	compiler  CompilerPort
	input     textinput.Model
	viewport  viewport.Model
	results   []domain.SearchResult
	compiled  *compiler.Result
	summary   string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates the console model. summary is the library overview shown in
// the header.
func New(index domain.SearchIndex, comp CompilerPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe a sound and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		index:    index,
		compiler: comp,
		input:    ti,
		viewport: vp,
		summary:  summary,
		status:   "Loaded. Type to search, c to compile.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderPane())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.results = m.index.Search(domain.Query{Text: q}, 10)
				m.compiled = nil
				m.cursor = 0
				m.lastQuery = q
				if len(m.results) == 0 {
					m.status = fmt.Sprintf("No matches for %q", q)
				} else {
					m.status = fmt.Sprintf("%d results for %q — c compiles the highlighted preset", len(m.results), q)
				}
				m.input.SetValue("")
				m.viewport.SetContent(m.renderPane())
				return m, nil
			}
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.compiled = nil
				m.viewport.SetContent(m.renderPane())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.compiled = nil
				m.viewport.SetContent(m.renderPane())
				return m, nil
			}
		case "c":
			// only when the input is idle, so queries can still contain c
			if len(m.results) > 0 && strings.TrimSpace(m.input.Value()) == "" {
				res, err := m.compiler.CompilePreset(context.Background(), m.results[m.cursor].PresetID, m.lastQuery, compiler.Options{})
				if err != nil {
					m.status = "Compile error: " + err.Error()
				} else {
					m.compiled = res
					m.status = fmt.Sprintf("Compiled %s (role %s, seed %d)", res.PresetID, res.Adjustments.Role, res.Decisions.Seed)
				}
				m.viewport.SetContent(m.renderPane())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the console layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("synthgraph")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderPane() string {
	if m.compiled != nil {
		return m.renderCompiled()
	}
	if len(m.results) == 0 {
		return "No results yet."
	}
	var b strings.Builder
	for i, r := range m.results {
		line := fmt.Sprintf("%-32s score=%.3f", r.PresetID, r.Score)
		if i == m.cursor {
			line = highlightStyle.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderCompiled() string {
	res := m.compiled
	var b strings.Builder
	fmt.Fprintf(&b, "%s  score=%.3f  seed=%d\n\n", res.PresetID, res.Score, res.Decisions.Seed)

	fmt.Fprintf(&b, "graph: %d nodes, %d connections", len(res.Graph.Nodes), len(res.Graph.Connections))
	if res.Graph.ValidationPassed {
		b.WriteString("  [valid]\n")
	} else {
		b.WriteString("  [INVALID]\n")
	}
	for _, n := range res.Graph.Nodes {
		fmt.Fprintf(&b, "  %-16s %s\n", n.ID, n.Type)
	}

	b.WriteString("\nparameters:\n")
	keys := make([]string, 0, len(res.Parameters))
	for k := range res.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %-20s %.4f\n", k, res.Parameters[k])
	}

	if len(res.Diagnostics) > 0 {
		b.WriteString("\ndiagnostics:\n")
		for _, d := range res.Diagnostics {
			b.WriteString("  - " + d + "\n")
		}
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
