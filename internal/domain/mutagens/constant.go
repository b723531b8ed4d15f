package mutagens

import (
	"go/ast"
	"go/constant"
	"go/token"
	"math/big"
	"strings"

	m "gooze.dev/pkg/mutscore/internal/model"
)

// matchConstant handles non-zero INT and FLOAT literals. Go literals carry no
// sign (a negative number is a unary minus applied to a literal), so growing
// the literal's magnitude by one turns n into n+1 for positive values and
// into n-1 for negative ones.
func matchConstant(lit *ast.BasicLit) (Site, bool) {
	if lit.Kind != token.INT && lit.Kind != token.FLOAT {
		return Site{}, false
	}

	value := constant.MakeFromLiteral(lit.Value, lit.Kind, 0)
	if value.Kind() == constant.Unknown || constant.Sign(value) == 0 {
		return Site{}, false
	}

	next := constant.BinaryOp(value, token.ADD, constant.MakeInt64(1))

	mutated, ok := formatLiteral(next, lit.Kind)
	if !ok {
		return Site{}, false
	}

	// A literal whose rendering cannot hold the increment would be an
	// equivalent mutant.
	if back := constant.MakeFromLiteral(mutated, lit.Kind, 0); back.Kind() == constant.Unknown ||
		constant.Compare(back, token.EQL, value) {
		return Site{}, false
	}

	return Site{
		Kind:     m.MutationConstant,
		Pos:      lit.ValuePos,
		Original: lit.Value,
		Mutated:  mutated,
	}, true
}

// maxFractionDigits bounds the decimal expansion tried for fractional floats.
const maxFractionDigits = 64

// formatLiteral renders value exactly as a literal of the given kind. Float
// literals keep a fraction or exponent so untyped constants stay floating point.
func formatLiteral(value constant.Value, kind token.Token) (string, bool) {
	if kind == token.INT {
		return value.ExactString(), true
	}

	if whole := constant.ToInt(value); whole.Kind() == constant.Int {
		return whole.ExactString() + ".0", true
	}

	switch v := constant.Val(value).(type) {
	case *big.Rat:
		for digits := 1; digits <= maxFractionDigits; digits++ {
			text := v.FloatString(digits)
			if constant.Compare(constant.MakeFromLiteral(text, token.FLOAT, 0), token.EQL, value) {
				return text, true
			}
		}

		return "", false
	case *big.Float:
		if v.IsInf() {
			return "", false
		}

		text := v.Text('g', -1)
		if !strings.ContainsAny(text, ".e") {
			text += ".0"
		}

		return text, true
	default:
		return "", false
	}
}
