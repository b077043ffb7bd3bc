package domain

// ChoiceProbability is the hint weight of one choice at the current node.
type ChoiceProbability struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

// Statistics summarizes the active session.
type Statistics struct {
	TotalNodes     int      `json:"totalNodes"`
	TimeElapsed    int      `json:"timeElapsed"` // seconds
	PathComplexity int      `json:"pathComplexity"`
	MaxDepth       int      `json:"maxDepth"`
	Attempts       int      `json:"attempts"`
	HintsUsed      int      `json:"hintsUsed"`
	PathTaken      []string `json:"pathTaken"`
	Achievements   []string `json:"achievements"`
	FlagsCaptured  []string `json:"flagsCaptured"`
}
