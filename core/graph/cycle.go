package graph

import (
	"strings"

	"recipe-cost/core/types"
)

// CircularDependencyError reports a recipe that transitively includes
// itself. Path is the ordered cycle, first and last entries equal, so
// an authoring UI can point at the offending line.
type CircularDependencyError struct {
	Path []types.RecipeID
}

func (e *CircularDependencyError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = string(id)
	}
	return "circular dependency: " + strings.Join(parts, " -> ")
}

// color marks for the depth-first traversal
type color int

const (
	white color = iota // unvisited
	gray               // in progress
	black              // done
)

// DetectCycle validates that the graph is acyclic. Ingredient nodes are
// leaves and cannot participate in a cycle; only recipe edges are
// followed. Runs before every evaluation triggered by a structural
// edit; a pure price change cannot introduce new edges.
func DetectCycle(g *Graph) error {
	colors := make(map[string]color, len(g.Nodes))

	var visit func(key string, stack []types.RecipeID) error
	visit = func(key string, stack []types.RecipeID) error {
		node := g.Nodes[key]
		if node == nil || node.Ref.Kind != types.KindSubRecipe {
			return nil
		}

		switch colors[key] {
		case black:
			return nil
		case gray:
			// Re-encountered an in-progress node: report the cycle
			// from its first appearance on the stack.
			id := node.Ref.RecipeID
			for i, onPath := range stack {
				if onPath == id {
					cycle := append([]types.RecipeID{}, stack[i:]...)
					return &CircularDependencyError{Path: append(cycle, id)}
				}
			}
			return &CircularDependencyError{Path: append(stack, id)}
		}

		colors[key] = gray
		stack = append(stack, node.Ref.RecipeID)
		for _, edge := range node.Edges {
			if err := visit(edge.To, stack); err != nil {
				return err
			}
		}
		colors[key] = black
		return nil
	}

	// Start from every recipe node, not just the root, so detached
	// subgraphs cannot hide a cycle.
	for _, key := range g.Keys() {
		if err := visit(key, nil); err != nil {
			return err
		}
	}
	return nil
}
