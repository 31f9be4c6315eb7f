package domain

// NodeType classifies a DSP graph node.
type NodeType string

const (
	NodeOscillator NodeType = "oscillator"
	NodeEnvelope   NodeType = "envelope"
	NodeFilter     NodeType = "filter"
	NodeEffect     NodeType = "effect"
	NodeLFO        NodeType = "lfo"
	NodeStereo     NodeType = "stereo"
	NodeClipper    NodeType = "clipper"
	NodeLimiter    NodeType = "limiter"
)

// Virtual modulation bus names.
const (
	BusModLFO      = "mod_lfo"
	BusModEnv      = "mod_env"
	BusMacroMotion = "macro_motion"
)

// GraphNode is one DSP stage. Parameters holds numeric values only;
// Attributes is the string side table (waveform names, filter types).
type GraphNode struct {
	ID         string             `json:"id"`
	Type       NodeType           `json:"type"`
	Parameters map[string]float64 `json:"parameters"`
	Attributes map[string]string  `json:"attributes,omitempty"`
	Inputs     []string           `json:"inputs,omitempty"`
	Outputs    []string           `json:"outputs,omitempty"`
}

// Connection is a directed edge between two node ports.
type Connection struct {
	From     string `json:"from"`
	FromPort string `json:"from_port"`
	To       string `json:"to"`
	ToPort   string `json:"to_port"`
}

// Graph is the compiled DSP topology. Construction always completes before
// validation runs, so a Graph with ValidationPassed == false is still fully
// formed; callers decide whether to reject or render anyway.
type Graph struct {
	Nodes            []*GraphNode        `json:"nodes"`
	Connections      []Connection        `json:"connections"`
	Buses            map[string][]string `json:"buses"`
	ValidationPassed bool                `json:"validation_passed"`
	ValidationErrors []string            `json:"validation_errors,omitempty"`
}

// Node returns the first node with the given type, or nil.
func (g *Graph) Node(t NodeType) *GraphNode {
	for _, n := range g.Nodes {
		if n.Type == t {
			return n
		}
	}
	return nil
}

// NodesOf returns every node with the given type in construction order.
func (g *Graph) NodesOf(t NodeType) []*GraphNode {
	var out []*GraphNode
	for _, n := range g.Nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}
