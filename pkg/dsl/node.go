package dsl

import "github.com/aretw0/acheron/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Text sets the narrative of the node.
func (n *NodeBuilder) Text(content string) *NodeBuilder {
	n.node.Text = content
	return n
}

// Choice adds an edge to target.
func (n *NodeBuilder) Choice(label, target string) *NodeBuilder {
	n.node.Choices = append(n.node.Choices, domain.Choice{Label: label, TargetNodeID: target})
	return n
}

// Failure adds an edge marked as a failing move.
func (n *NodeBuilder) Failure(label, target string) *NodeBuilder {
	n.node.Choices = append(n.node.Choices, domain.Choice{Label: label, TargetNodeID: target, IsFailure: true})
	return n
}

// Winning adds an edge marked as a winning move.
func (n *NodeBuilder) Winning(label, target string) *NodeBuilder {
	n.node.Choices = append(n.node.Choices, domain.Choice{Label: label, TargetNodeID: target, IsWin: true})
	return n
}

// Restart adds the single "Restart" edge of a failure screen.
func (n *NodeBuilder) Restart(target string) *NodeBuilder {
	return n.Choice("Restart", target)
}

// Hint annotates the most recently added choice.
func (n *NodeBuilder) Hint(text string) *NodeBuilder {
	if last := len(n.node.Choices) - 1; last >= 0 {
		n.node.Choices[last].Hint = text
	}
	return n
}

// Wins tags the node with a win result.
func (n *NodeBuilder) Wins() *NodeBuilder {
	n.node.Result = domain.ResultWin
	return n
}

// Fails tags the node with a fail result.
func (n *NodeBuilder) Fails() *NodeBuilder {
	n.node.Result = domain.ResultFail
	return n
}

// Partial tags the node with a partial result.
func (n *NodeBuilder) Partial() *NodeBuilder {
	n.node.Result = domain.ResultPartial
	return n
}

// Intel tags the node as informational.
func (n *NodeBuilder) Intel() *NodeBuilder {
	n.node.Result = domain.ResultIntel
	return n
}

// Flag sets the flag captured on reaching the node.
func (n *NodeBuilder) Flag(flag string) *NodeBuilder {
	n.node.Flag = flag
	return n
}

// Add continues with another node of the same scenario.
func (n *NodeBuilder) Add(id string) *NodeBuilder {
	return n.builder.Add(id)
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}
