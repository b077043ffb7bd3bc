package runtime_test

import (
	"testing"

	"github.com/aretw0/acheron/internal/runtime"
	"github.com/aretw0/acheron/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	restart := []domain.Choice{{Label: "Restart mission", TargetNodeID: "start"}}
	onward := []domain.Choice{{Label: "Continue", TargetNodeID: "next"}}

	tests := []struct {
		name string
		node domain.Node
		want runtime.Evaluation
	}{
		{"terminal fail", domain.Node{Result: domain.ResultFail}, runtime.Evaluation{Status: domain.StatusFailed}},
		{"restart-only fail", domain.Node{Result: domain.ResultFail, Choices: restart}, runtime.Evaluation{Status: domain.StatusFailed}},
		{"fail with onward choice", domain.Node{Result: domain.ResultFail, Choices: onward}, runtime.Evaluation{Status: domain.StatusPlaying}},
		{"win with choices", domain.Node{Result: domain.ResultWin, Choices: onward}, runtime.Evaluation{Status: domain.StatusWon}},
		{"terminal partial", domain.Node{Result: domain.ResultPartial}, runtime.Evaluation{Status: domain.StatusWon}},
		{"partial with choices", domain.Node{Result: domain.ResultPartial, Choices: onward}, runtime.Evaluation{Status: domain.StatusPlaying}},
		{"inferred win", domain.Node{Text: "You WIN the domain"}, runtime.Evaluation{Status: domain.StatusWon, Inferred: true}},
		{"inferred fail", domain.Node{Text: "Operation failed"}, runtime.Evaluation{Status: domain.StatusFailed, Inferred: true}},
		{"dead end", domain.Node{Text: "Silence."}, runtime.Evaluation{Status: domain.StatusPlaying, DeadEnd: true}},
		{"intel is informational", domain.Node{Result: domain.ResultIntel, Choices: onward}, runtime.Evaluation{Status: domain.StatusPlaying}},
		{"plain node", domain.Node{Text: "win or fail later", Choices: onward}, runtime.Evaluation{Status: domain.StatusPlaying}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runtime.Evaluate(&tt.node))
		})
	}
}
