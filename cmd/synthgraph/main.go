package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"synthgraph/internal/compiler"
	"synthgraph/internal/config"
	"synthgraph/internal/domain"
	"synthgraph/internal/errs"
	"synthgraph/internal/graph"
	"synthgraph/internal/library"
	"synthgraph/internal/policy"
	"synthgraph/internal/render"
	"synthgraph/internal/server"
	"synthgraph/internal/tui"
)

var version = "0.1.0"

var (
	cfgPath string

	roleFlag     string
	tempoFlag    float64
	keyFlag      string
	topKFlag     int
	renderFlag   bool
	durationFlag float64
	portFlag     int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "synthgraph",
	Short: "Compile sound descriptions into validated DSP graphs",
	Long: `synthgraph loads synthesizer preset libraries, searches them
semantically, and compiles the best match for a text query into a
validated DSP control graph.

Pipeline: parse → normalize → index → policy → decisions → graph`,
	Version: version,
}

var searchCmd = &cobra.Command{
	Use:   "search <query> file.json...",
	Short: "Rank library presets against a query",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSearch,
}

var compileCmd = &cobra.Command{
	Use:   "compile <query> file.json...",
	Short: "Compile the best match for a query into a DSP graph",
	Long: `Compile searches the library, applies the role policy, makes the
seeded parameter decisions, and prints the resulting graph as JSON.

Examples:
  synthgraph compile "warm analog pad" presets/*.json
  synthgraph compile "driving bass" --role bass --tempo 140 presets/*.json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCompile,
}

var serveCmd = &cobra.Command{
	Use:   "serve file.json...",
	Short: "Serve the library and compiler over HTTP",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runServe,
}

var tuiCmd = &cobra.Command{
	Use:   "tui file.json...",
	Short: "Browse and compile presets interactively",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default: ./config.yaml or ~/.config/synthgraph/config.yaml)")

	searchCmd.Flags().StringVar(&roleFlag, "role", "", "musical role hint (pad, bass, lead, ...)")
	searchCmd.Flags().Float64Var(&tempoFlag, "tempo", 0, "tempo in BPM")
	searchCmd.Flags().StringVar(&keyFlag, "key", "", "musical key")
	searchCmd.Flags().IntVar(&topKFlag, "top", 10, "number of results")

	compileCmd.Flags().StringVar(&roleFlag, "role", "", "musical role (defaults to the match's own role)")
	compileCmd.Flags().Float64Var(&tempoFlag, "tempo", 0, "tempo in BPM (default 120)")
	compileCmd.Flags().StringVar(&keyFlag, "key", "", "musical key")
	compileCmd.Flags().BoolVar(&renderFlag, "render", false, "render an audition tone with the fallback renderer")
	compileCmd.Flags().Float64Var(&durationFlag, "duration", 2.0, "audition tone length in seconds")

	serveCmd.Flags().IntVar(&portFlag, "port", 0, "listen port (overrides config)")

	rootCmd.AddCommand(searchCmd, compileCmd, serveCmd, tuiCmd)
}

func loadConfig() (*config.AppConfig, error) {
	_ = godotenv.Load()
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

func loadLibrary(paths []string, cfg *config.AppConfig, log *slog.Logger) (*library.Library, error) {
	lib, err := library.Load(paths, cfg, log)
	if err != nil {
		return nil, err
	}
	for _, e := range lib.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", e)
	}
	return lib, nil
}

func newCompiler(lib *library.Library, cfg *config.AppConfig, log *slog.Logger) *compiler.Compiler {
	return compiler.New(lib.Index, lib.Presets, policy.NewManager(log), graph.NewBuilder(cfg), log)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// parseRoleFlag validates --role. Empty means unspecified.
func parseRoleFlag() (domain.Role, error) {
	if roleFlag == "" {
		return "", nil
	}
	role, ok := domain.ParseRole(roleFlag)
	if !ok {
		return "", fmt.Errorf("%w: %q (known: %v)", errs.ErrUnknownRole, roleFlag, domain.Roles)
	}
	return role, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	role, err := parseRoleFlag()
	if err != nil {
		return err
	}
	lib, err := loadLibrary(args[1:], cfg, quietLogger())
	if err != nil {
		return err
	}

	results := lib.Index.Search(domain.Query{
		Text:  args[0],
		Role:  role,
		Tempo: tempoFlag,
		Key:   keyFlag,
	}, topKFlag)
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%2d. %-32s %.3f\n", i+1, r.PresetID, r.Score)
	}
	return nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	role, err := parseRoleFlag()
	if err != nil {
		return err
	}
	log := quietLogger()
	lib, err := loadLibrary(args[1:], cfg, log)
	if err != nil {
		return err
	}

	comp := newCompiler(lib, cfg, log)
	res, err := comp.Compile(context.Background(), args[0], compiler.Options{
		Role:  role,
		Tempo: tempoFlag,
		Key:   keyFlag,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if renderFlag {
		samples, err := render.NewToneRenderer().Render(context.Background(), res.Parameters, durationFlag)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "rendered %d samples at %d Hz (fallback tone)\n", len(samples), render.SampleRate)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	lib, err := loadLibrary(args, cfg, log)
	if err != nil {
		return err
	}

	port := cfg.Server.Port
	if portFlag != 0 {
		port = portFlag
	}
	srv := server.New(port, lib, newCompiler(lib, cfg, log), render.NewToneRenderer(), log)
	return srv.Run()
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := quietLogger()
	lib, err := loadLibrary(args, cfg, log)
	if err != nil {
		return err
	}

	m := tui.New(lib.Index, newCompiler(lib, cfg, log), lib.Summary())
	_, err = tea.NewProgram(m).Run()
	return err
}
