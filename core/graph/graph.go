// Package graph assembles the recipes and ingredients reachable from a
// root recipe into an id-indexed dependency graph and validates that it
// is acyclic. References are loose ids, so the graph is rebuilt per
// evaluation rather than maintained incrementally.
package graph

import (
	"sort"

	"recipe-cost/core/types"
)

// Node is one distinct recipe or ingredient reached from the root.
// The same component referenced by two different lines is one node.
type Node struct {
	Ref types.ComponentRef

	// Recipe is set for sub-recipe nodes (snapshot at build time)
	Recipe *types.Recipe

	// Ingredient is set for leaf nodes (snapshot at build time,
	// including the observed price version)
	Ingredient *types.Ingredient

	// Edges lists this recipe's lines in authored order, each
	// pointing at the child node key. Empty for ingredient nodes.
	Edges []Edge
}

// Edge connects a parent recipe line to a child node
type Edge struct {
	Line types.ComponentLine
	To   string
}

// Graph is the dependency graph for one evaluation pass
type Graph struct {
	Root  string
	Nodes map[string]*Node
}

// RootRecipe returns the root recipe node
func (g *Graph) RootRecipe() *Node {
	return g.Nodes[g.Root]
}

// Node returns a node by key
func (g *Graph) Node(key string) (*Node, bool) {
	n, ok := g.Nodes[key]
	return n, ok
}

// Size returns the number of distinct nodes
func (g *Graph) Size() int {
	return len(g.Nodes)
}

// Keys returns all node keys in sorted order
func (g *Graph) Keys() []string {
	keys := make([]string, 0, len(g.Nodes))
	for k := range g.Nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LeafIngredients returns the ingredient snapshots in the graph,
// keyed by ingredient id.
func (g *Graph) LeafIngredients() map[types.IngredientID]*types.Ingredient {
	leaves := make(map[types.IngredientID]*types.Ingredient)
	for _, n := range g.Nodes {
		if n.Ref.Kind == types.KindIngredient {
			leaves[n.Ingredient.ID] = n.Ingredient
		}
	}
	return leaves
}
