package domain

// Result is an explicit outcome tag authored on a node.
type Result string

const (
	ResultNone    Result = ""
	ResultWin     Result = "win"
	ResultFail    Result = "fail"
	ResultPartial Result = "partial"
	// ResultIntel marks an informational node. It never affects the session status.
	ResultIntel Result = "intel"
)

// Choice is a labeled edge from one node to another.
type Choice struct {
	Label        string `json:"label" yaml:"label" mapstructure:"label"`
	TargetNodeID string `json:"targetNodeId" yaml:"targetNodeId" mapstructure:"targetNodeId"`
	IsFailure    bool   `json:"isFailure,omitempty" yaml:"isFailure,omitempty" mapstructure:"isFailure"`
	IsWin        bool   `json:"isWin,omitempty" yaml:"isWin,omitempty" mapstructure:"isWin"`
	Hint         string `json:"hint,omitempty" yaml:"hint,omitempty" mapstructure:"hint"`
}

// Node represents a decision point in the scenario graph.
type Node struct {
	ID      string   `json:"id" yaml:"id" mapstructure:"id"`
	Text    string   `json:"text" yaml:"text" mapstructure:"text"`
	Choices []Choice `json:"choices" yaml:"choices" mapstructure:"choices"`
	Result  Result   `json:"result,omitempty" yaml:"result,omitempty" mapstructure:"result"`
	Flag    string   `json:"flag,omitempty" yaml:"flag,omitempty" mapstructure:"flag"`
}

// IsTerminal reports whether the node has no outgoing choices.
func (n *Node) IsTerminal() bool {
	return len(n.Choices) == 0
}

// Clone returns a copy of the node that does not share the choices slice.
func (n *Node) Clone() Node {
	c := *n
	c.Choices = append([]Choice(nil), n.Choices...)
	return c
}
