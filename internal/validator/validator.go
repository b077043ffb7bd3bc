package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/acheron/internal/runtime"
	"github.com/aretw0/acheron/pkg/domain"
)

// Kind classifies an authoring issue.
type Kind string

const (
	KindMissingStart Kind = "missing_start"
	KindDangling     Kind = "dangling_target"
	KindDeadEnd      Kind = "dead_end"
	KindUnreachable  Kind = "unreachable"
	KindDuplicateID  Kind = "duplicate_id"
)

// Issue is one authoring problem. None of them prevent play.
type Issue struct {
	Kind   Kind   `json:"kind"`
	NodeID string `json:"node_id"`
	Detail string `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s '%s': %s", i.Kind, i.NodeID, i.Detail)
}

// Validate crawls the scenario from its start node and reports broken links,
// terminal nodes with no resolvable outcome, nodes that cannot be reached and repeated ids.
func Validate(s *domain.Scenario) []Issue {
	var issues []Issue

	seen := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if seen[n.ID] {
			issues = append(issues, Issue{Kind: KindDuplicateID, NodeID: n.ID, Detail: "declared more than once, the last declaration is used"})
		}
		seen[n.ID] = true
	}

	idx := runtime.NewIndex(s)
	if _, ok := idx.Lookup(s.StartNodeID); !ok {
		return append(issues, Issue{Kind: KindMissingStart, NodeID: s.StartNodeID, Detail: "start node does not exist"})
	}

	visited := make(map[string]bool)
	queue := []string{s.StartNodeID}
	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]
		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		node, _ := idx.Lookup(currentID)
		if node.IsTerminal() && runtime.Evaluate(node).DeadEnd {
			issues = append(issues, Issue{Kind: KindDeadEnd, NodeID: node.ID, Detail: "terminal node resolves to neither win nor fail"})
		}
		for _, c := range node.Choices {
			if _, ok := idx.Lookup(c.TargetNodeID); !ok {
				issues = append(issues, Issue{Kind: KindDangling, NodeID: node.ID, Detail: fmt.Sprintf("choice %q targets missing node '%s'", c.Label, c.TargetNodeID)})
				continue
			}
			if !visited[c.TargetNodeID] {
				queue = append(queue, c.TargetNodeID)
			}
		}
	}

	var unreachable []string
	for id := range seen {
		if !visited[id] {
			unreachable = append(unreachable, id)
		}
	}
	sort.Strings(unreachable)
	for _, id := range unreachable {
		issues = append(issues, Issue{Kind: KindUnreachable, NodeID: id, Detail: "not reachable from the start node"})
	}
	return issues
}

// ValidateGraph is Validate folded into a single error, nil when clean.
func ValidateGraph(s *domain.Scenario) error {
	issues := Validate(s)
	if len(issues) == 0 {
		return nil
	}
	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = issue.String()
	}
	return fmt.Errorf("found %d issues:\n- %s", len(issues), strings.Join(lines, "\n- "))
}
