package graph

import (
	"fmt"

	"recipe-cost/core/types"
)

// UnresolvedReferenceError reports a line referencing a component that
// the lookups cannot resolve. Fatal for the whole calculation: a
// silently zeroed branch would produce a misleadingly low cost.
type UnresolvedReferenceError struct {
	Component    string
	ReferencedBy types.RecipeID
}

func (e *UnresolvedReferenceError) Error() string {
	if e.ReferencedBy != "" {
		return fmt.Sprintf("unresolved reference %s in recipe %s", e.Component, e.ReferencedBy)
	}
	return fmt.Sprintf("unresolved reference %s", e.Component)
}

// Build performs a reachability walk from the root recipe, resolving
// every referenced ingredient and recipe through the lookups and
// snapshotting them into an id-indexed graph. Deduplicated: a shared
// sub-recipe is one node regardless of how many parents reference it.
func Build(rootID types.RecipeID, recipes types.RecipeLookup, ingredients types.IngredientLookup) (*Graph, error) {
	g := &Graph{
		Root:  types.SubRecipeRef(rootID).Key(),
		Nodes: make(map[string]*Node),
	}

	root, ok := recipes.Recipe(rootID)
	if !ok {
		return nil, &UnresolvedReferenceError{Component: g.Root}
	}

	// Iterative walk; the pending stack holds recipes whose lines have
	// not been expanded yet.
	pending := []*types.Recipe{root}
	g.Nodes[g.Root] = &Node{Ref: types.SubRecipeRef(rootID), Recipe: root}

	for len(pending) > 0 {
		r := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		node := g.Nodes[types.SubRecipeRef(r.ID).Key()]
		for _, line := range r.Lines {
			childKey := line.Ref.Key()

			if _, seen := g.Nodes[childKey]; !seen {
				switch line.Ref.Kind {
				case types.KindIngredient:
					ing, ok := ingredients.Ingredient(line.Ref.IngredientID)
					if !ok {
						return nil, &UnresolvedReferenceError{Component: childKey, ReferencedBy: r.ID}
					}
					g.Nodes[childKey] = &Node{Ref: line.Ref, Ingredient: ing}

				case types.KindSubRecipe:
					sub, ok := recipes.Recipe(line.Ref.RecipeID)
					if !ok {
						return nil, &UnresolvedReferenceError{Component: childKey, ReferencedBy: r.ID}
					}
					g.Nodes[childKey] = &Node{Ref: line.Ref, Recipe: sub}
					pending = append(pending, sub)
				}
			}

			node.Edges = append(node.Edges, Edge{Line: line, To: childKey})
		}
	}

	return g, nil
}
