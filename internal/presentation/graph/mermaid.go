package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/acheron/pkg/domain"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart of a scenario.
// Shapes follow the node role:
// - Start: ((Circle))
// - Win / partial terminal: ([Stadium])
// - Fail: {{Hexagon}}
// - Intel: [/Parallelogram/]
// - Default: [Rectangle]
// Edges flagged as failure or win branches are dotted and thick respectively.
// Overlay styles (visited/current) are applied if provided.
func GenerateMermaid(s *domain.Scenario, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range s.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == s.StartNodeID:
			opener, closer = "((", "))"
		case node.Result == domain.ResultFail:
			opener, closer = "{{", "}}"
		case node.Result == domain.ResultWin, node.Result == domain.ResultPartial:
			opener, closer = "([", "])"
		case node.Result == domain.ResultIntel:
			opener, closer = "[/", "/]"
		}

		label := node.ID
		if node.Flag != "" {
			label += " <br/> 🚩 " + escape(node.Flag)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		for _, c := range node.Choices {
			arrow := "--"
			closing := "-->"
			switch {
			case c.IsFailure:
				arrow, closing = "-.", ".->"
			case c.IsWin:
				arrow, closing = "==", "==>"
			}
			fmt.Fprintf(&sb, "    %s %s \"%s\" %s %s\n", safeID, arrow, escape(c.Label), closing, sanitizeMermaidID(c.TargetNodeID))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
