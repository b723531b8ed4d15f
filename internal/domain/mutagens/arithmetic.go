package mutagens

import (
	"go/ast"
	"go/token"

	m "gooze.dev/pkg/mutscore/internal/model"
)

// operatorSwaps maps each arithmetic operator to its replacement.
var operatorSwaps = map[token.Token]token.Token{
	token.ADD: token.SUB,
	token.SUB: token.ADD,
	token.MUL: token.QUO,
	token.QUO: token.MUL,
}

func matchOperator(expr *ast.BinaryExpr) (Site, bool) {
	mutated, ok := operatorSwaps[expr.Op]
	if !ok {
		return Site{}, false
	}

	return Site{
		Kind:     m.MutationOperator,
		Pos:      expr.OpPos,
		Original: expr.Op.String(),
		Mutated:  mutated.String(),
	}, true
}
