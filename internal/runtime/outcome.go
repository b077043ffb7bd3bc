package runtime

import (
	"regexp"
	"strings"

	"github.com/aretw0/acheron/pkg/domain"
)

var restartLabel = regexp.MustCompile(`(?i)restart`)

// Evaluation is the outcome of landing on a node.
type Evaluation struct {
	Status domain.Status
	// Inferred is true when the status came from scanning the node text.
	Inferred bool
	// DeadEnd is true for a terminal node that resolved to neither win nor fail.
	DeadEnd bool
}

// Evaluate decides the session status after arriving at node. First match wins:
//
//  1. fail result on a terminal node, or on a node whose only choice is a restart → failed
//  2. win result → won
//  3. partial result on a terminal node → won
//  4. terminal node: text containing "win" → won, "fail" → failed, otherwise a playing dead end
//  5. anything else → playing
func Evaluate(node *domain.Node) Evaluation {
	terminal := node.IsTerminal()
	restartOnly := len(node.Choices) == 1 && restartLabel.MatchString(node.Choices[0].Label)

	switch {
	case node.Result == domain.ResultFail && (terminal || restartOnly):
		return Evaluation{Status: domain.StatusFailed}
	case node.Result == domain.ResultWin:
		return Evaluation{Status: domain.StatusWon}
	case node.Result == domain.ResultPartial && terminal:
		return Evaluation{Status: domain.StatusWon}
	case terminal:
		text := strings.ToLower(node.Text)
		if strings.Contains(text, "win") {
			return Evaluation{Status: domain.StatusWon, Inferred: true}
		}
		if strings.Contains(text, "fail") {
			return Evaluation{Status: domain.StatusFailed, Inferred: true}
		}
		return Evaluation{Status: domain.StatusPlaying, DeadEnd: true}
	}
	return Evaluation{Status: domain.StatusPlaying}
}
