package runtime

import (
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/acheron/pkg/domain"
)

const speedRunLimit = 180 * time.Second

const (
	AchievementResolved = "Mission Resolved"
	AchievementSpeedRun = "Speed Runner"
	AchievementStealth  = "Stealth Operator"
	AchievementNoHints  = "No-Help Ninja"
	AchievementRecon    = "Recon First"
	AchievementRoaster  = "Roaster Master"
)

var (
	noisyTechnique  = regexp.MustCompile(`(?i)brute-force|spray|psexec`)
	reconTechnique  = regexp.MustCompile(`(?i)osint|job postings|sublist3r`)
	credentialCrack = regexp.MustCompile(`(?i)kerberoast|spn hash`)
)

// Achievements lists the badges earned by s, in a fixed order.
// current is the node the session sits on and may be nil.
func Achievements(s *domain.SessionState, current *domain.Node, now time.Time) []string {
	out := []string{}
	if s == nil {
		return out
	}

	won := s.Status == domain.StatusWon
	partial := current != nil && current.Result == domain.ResultPartial
	path := strings.Join(s.PathTaken, "\n")

	if won || partial {
		out = append(out, AchievementResolved)
	}
	if secs := s.Elapsed(now) / time.Second * time.Second; won && secs > 0 && secs < speedRunLimit {
		out = append(out, AchievementSpeedRun)
	}
	if !noisyTechnique.MatchString(path) {
		out = append(out, AchievementStealth)
	}
	if s.HintsUsed == 0 && (won || partial) {
		out = append(out, AchievementNoHints)
	}
	if reconTechnique.MatchString(path) {
		out = append(out, AchievementRecon)
	}
	if credentialCrack.MatchString(path) {
		out = append(out, AchievementRoaster)
	}
	return out
}

// FlagsCaptured returns the distinct flags of visited nodes, in visit order.
func FlagsCaptured(idx *Index, s *domain.SessionState) []string {
	flags := []string{}
	if s == nil {
		return flags
	}
	for _, id := range s.History {
		if n, ok := idx.Lookup(id); ok && n.Flag != "" {
			flags = domain.AppendUnique(flags, n.Flag)
		}
	}
	return flags
}

// Complexity counts the distinct nodes visited.
func Complexity(s *domain.SessionState) int {
	if s == nil {
		return 0
	}
	seen := make(map[string]struct{}, len(s.History))
	for _, id := range s.History {
		seen[id] = struct{}{}
	}
	return len(seen)
}
