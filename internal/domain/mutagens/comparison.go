package mutagens

import (
	"go/ast"
	"go/token"

	m "gooze.dev/pkg/mutscore/internal/model"
)

// comparisonSwaps negates each comparison: == and != swap, relational
// operators flip to their complement.
var comparisonSwaps = map[token.Token]token.Token{
	token.EQL: token.NEQ,
	token.NEQ: token.EQL,
	token.LSS: token.GEQ,
	token.GTR: token.LEQ,
	token.LEQ: token.GTR,
	token.GEQ: token.LSS,
}

func matchComparison(expr *ast.BinaryExpr) (Site, bool) {
	mutated, ok := comparisonSwaps[expr.Op]
	if !ok {
		return Site{}, false
	}

	return Site{
		Kind:     m.MutationComparison,
		Pos:      expr.OpPos,
		Original: expr.Op.String(),
		Mutated:  mutated.String(),
	}, true
}
