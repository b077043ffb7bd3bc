package runtime

import (
	"fmt"
	"time"

	"github.com/aretw0/acheron/pkg/domain"
)

// Step describes a committed transition.
type Step struct {
	From       string
	To         string
	Label      string
	Evaluation Evaluation
	Node       *domain.Node
}

// Apply computes the state that follows taking choice from prev.
// prev is never modified; on error the caller keeps it as is.
//
// A nil step with a nil error means there was nothing to do (prev has no
// resolvable current node).
func Apply(idx *Index, prev *domain.SessionState, choice domain.Choice, now time.Time) (*domain.SessionState, *Step, error) {
	if prev == nil {
		return nil, nil, nil
	}
	from, ok := idx.Lookup(prev.CurrentNodeID)
	if !ok {
		return prev, nil, nil
	}
	if prev.Status.IsTerminal() {
		return prev, nil, domain.ErrSessionOver
	}

	target, ok := idx.Lookup(choice.TargetNodeID)
	if !ok {
		return prev, nil, &domain.InvalidBranchError{NodeID: from.ID, TargetID: choice.TargetNodeID}
	}

	next := prev.Clone()
	next.CurrentNodeID = target.ID
	next.History = append(next.History, target.ID)
	next.BranchDepth = prev.BranchDepth + 1
	next.PathTaken = append(next.PathTaken, PathEntry(from.ID, choice.Label, target.ID))
	next.UsedChoiceKeys = domain.AppendUnique(next.UsedChoiceKeys, domain.ChoiceKey(from.ID, choice.Label))

	eval := Evaluate(target)
	next.Status = eval.Status
	if eval.Status.IsTerminal() {
		next.CompletedOutcomes = domain.AppendUnique(next.CompletedOutcomes, target.ID)
		end := now
		next.EndTime = &end
	} else {
		next.EndTime = nil
	}

	return next, &Step{
		From:       from.ID,
		To:         target.ID,
		Label:      choice.Label,
		Evaluation: eval,
		Node:       target,
	}, nil
}

// PathEntry formats one pathTaken line.
func PathEntry(from, label, to string) string {
	return fmt.Sprintf("[%s] %s -> %s", from, label, to)
}

// ConsumeHint spends one hint if any remain.
func ConsumeHint(prev *domain.SessionState) (*domain.SessionState, bool) {
	if prev == nil || prev.HintsRemaining <= 0 {
		return prev, false
	}
	next := prev.Clone()
	next.HintsRemaining--
	next.HintsUsed++
	return next, true
}

// Restart builds a fresh session for idx.
// A full restart counts as another attempt on top of prev; otherwise attempts go back to one.
func Restart(idx *Index, prev *domain.SessionState, full bool, now time.Time, hints int) *domain.SessionState {
	next := domain.NewSessionState(idx.StartNodeID(), now, hints)
	if full && prev != nil {
		next.Attempts = prev.Attempts + 1
	}
	return next
}

// Resolves reports whether the state's current node exists in idx.
func Resolves(idx *Index, s *domain.SessionState) bool {
	if s == nil {
		return false
	}
	_, ok := idx.Lookup(s.CurrentNodeID)
	return ok
}
