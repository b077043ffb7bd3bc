package runtime

import (
	"math"
	"regexp"
	"strings"

	"github.com/aretw0/acheron/pkg/domain"
)

const (
	baseScore  = 10
	minScore   = 1
	reconBonus = 18
	noisyCost  = 8
	abortBonus = 2
	burnedCost = 15
	payoffGain = 12
)

var (
	reconPattern  = regexp.MustCompile(`osint|enumerate|manual|recon|permissions|check`)
	noisyPattern  = regexp.MustCompile(`brute-force|spray|psexec`)
	abortPattern  = regexp.MustCompile(`abort|move on|avoid`)
	burnedPattern = regexp.MustCompile(`detected|lockout|banned`)
	payoffPattern = regexp.MustCompile(`success|win|domain admin|exfil`)
)

// Score rates how promising choice looks from node. The result is at least 1.
// Stealthy reconnaissance is rewarded, noisy techniques and destinations that
// mention detection are penalized.
func Score(idx *Index, node *domain.Node, choice domain.Choice) int {
	text := strings.ToLower(node.Text + " " + choice.Label)
	label := strings.ToLower(choice.Label)

	score := baseScore
	if reconPattern.MatchString(text) {
		score += reconBonus
	}
	if noisyPattern.MatchString(text) {
		score -= noisyCost
	}
	if abortPattern.MatchString(label) {
		score += abortBonus
	}
	if dest, ok := idx.Lookup(choice.TargetNodeID); ok {
		destText := strings.ToLower(dest.Text)
		if burnedPattern.MatchString(destText) {
			score -= burnedCost
		}
		if payoffPattern.MatchString(destText) {
			score += payoffGain
		}
	}
	if score < minScore {
		return minScore
	}
	return score
}

// Probabilities normalizes the scores of every choice at node into rounded
// percentages, in choice order. Rounding drift is left as is, so the sum may be
// off 100 by a point or two.
func Probabilities(idx *Index, node *domain.Node) []domain.ChoiceProbability {
	if node == nil || len(node.Choices) == 0 {
		return []domain.ChoiceProbability{}
	}

	scores := make([]int, len(node.Choices))
	total := 0
	for i, c := range node.Choices {
		scores[i] = Score(idx, node, c)
		total += scores[i]
	}

	out := make([]domain.ChoiceProbability, len(node.Choices))
	for i, c := range node.Choices {
		out[i] = domain.ChoiceProbability{
			Label:   c.Label,
			Percent: roundHalfUp(float64(scores[i]) / float64(total) * 100),
		}
	}
	return out
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
