package mutagens

import (
	"go/ast"
	"go/constant"
	"go/token"
	"testing"

	m "gooze.dev/pkg/mutscore/internal/model"
)

func TestMatchConstant(t *testing.T) {
	tests := []struct {
		name    string
		kind    token.Token
		value   string
		want    string
		matched bool
	}{
		{"positive int", token.INT, "5", "6", true},
		{"one", token.INT, "1", "2", true},
		{"zero int is skipped", token.INT, "0", "", false},
		{"hex int", token.INT, "0x0F", "16", true},
		{"underscored int", token.INT, "1_000", "1001", true},
		{"zero hex is skipped", token.INT, "0x0", "", false},
		{"float keeps fraction", token.FLOAT, "1.5", "2.5", true},
		{"whole float stays float", token.FLOAT, "3.0", "4.0", true},
		{"exponent float", token.FLOAT, "1e3", "1001.0", true},
		{"zero float is skipped", token.FLOAT, "0.0", "", false},
		{"decimal fraction stays exact", token.FLOAT, "0.1", "1.1", true},
		{"hex float", token.FLOAT, "0x1p-2", "1.25", true},
		{"float beyond float64 precision", token.FLOAT, "1e16", "10000000000000001.0", true},
		{"float at 2^53", token.FLOAT, "9007199254740992.0", "9007199254740993.0", true},
		{"float too large to increment is skipped", token.FLOAT, "1e5000", "", false},
		{"string is not numeric", token.STRING, `"5"`, "", false},
		{"rune is not numeric", token.CHAR, "'a'", "", false},
		{"imaginary is not numeric", token.IMAG, "2i", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit := &ast.BasicLit{Kind: tt.kind, Value: tt.value}

			site, ok := matchConstant(lit)
			if ok != tt.matched {
				t.Fatalf("matchConstant(%s) matched = %v, want %v", tt.value, ok, tt.matched)
			}

			if !ok {
				return
			}

			if site.Kind != m.MutationConstant {
				t.Errorf("expected constant kind, got %s", site.Kind)
			}

			if site.Original != tt.value || site.Mutated != tt.want {
				t.Errorf("site = %q -> %q, want %q -> %q", site.Original, site.Mutated, tt.value, tt.want)
			}
		})
	}
}

// A negative number is a unary minus around a positive literal, so the
// literal's mutation moves the value away from zero: -5 becomes -6.
func TestMatchConstant_NegativeLiteral(t *testing.T) {
	sites := collectSites(t, "package sample\n\nvar x = -5\n")

	if len(sites) != 1 {
		t.Fatalf("expected 1 site, got %d", len(sites))
	}

	if sites[0].Original != "5" || sites[0].Mutated != "6" {
		t.Fatalf("site = %q -> %q, want 5 -> 6", sites[0].Original, sites[0].Mutated)
	}
}

func TestFormatLiteral_RoundTrips(t *testing.T) {
	for _, lit := range []string{"1e16", "2.5e20", "0.125", "123.456", "1e-3"} {
		value := constant.MakeFromLiteral(lit, token.FLOAT, 0)
		next := constant.BinaryOp(value, token.ADD, constant.MakeInt64(1))

		text, ok := formatLiteral(next, token.FLOAT)
		if !ok {
			t.Fatalf("formatLiteral(%s+1) failed", lit)
		}

		back := constant.MakeFromLiteral(text, token.FLOAT, 0)
		if !constant.Compare(back, token.EQL, next) {
			t.Errorf("%s+1 rendered as %q, which reads back as %s", lit, text, back.ExactString())
		}
	}
}
