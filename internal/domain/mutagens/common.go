// Package mutagens holds the mutation rules. Each kind keeps its site
// detection and its token transformation side by side, and both the discovery
// pass and the application pass go through Walk so they cannot drift apart.
package mutagens

import (
	"go/ast"
	"go/token"

	m "gooze.dev/pkg/mutscore/internal/model"
)

// Site is one mutable location found in a syntax tree.
type Site struct {
	Kind     m.MutationKind
	Pos      token.Pos
	Original string
	Mutated  string
}

// Match reports the site n denotes, if any. It is a closed switch over the
// supported kinds.
func Match(n ast.Node) (Site, bool) {
	switch node := n.(type) {
	case *ast.BinaryExpr:
		if site, ok := matchOperator(node); ok {
			return site, true
		}

		return matchComparison(node)
	case *ast.BasicLit:
		return matchConstant(node)
	}

	return Site{}, false
}

// Walk visits the tree in pre-order depth-first order and calls fn for every
// mutable site with its 1-based sequential id. Returning false from fn stops
// the walk.
func Walk(root ast.Node, fn func(id uint, node ast.Node, site Site) bool) {
	var (
		id      uint
		stopped bool
	)

	ast.Inspect(root, func(n ast.Node) bool {
		if stopped || n == nil {
			return false
		}

		site, ok := Match(n)
		if !ok {
			return true
		}

		id++

		if !fn(id, n, site) {
			stopped = true
			return false
		}

		return true
	})
}
