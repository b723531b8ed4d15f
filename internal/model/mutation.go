// Package model defines the data structures for mutation testing.
package model

// MutationKind represents the category of mutation.
type MutationKind string

const (
	// MutationOperator represents arithmetic operator swaps (+ <-> -, * <-> /).
	MutationOperator MutationKind = "operator"
	// MutationComparison represents equality and relational operator swaps.
	MutationComparison MutationKind = "comparison"
	// MutationConstant represents single-step perturbation of non-zero numeric literals.
	MutationConstant MutationKind = "constant"
)

// MutationKinds lists every supported kind in a fixed order.
var MutationKinds = []MutationKind{MutationOperator, MutationComparison, MutationConstant}

// Valid reports whether k is one of the supported kinds.
func (k MutationKind) Valid() bool {
	switch k {
	case MutationOperator, MutationComparison, MutationConstant:
		return true
	}

	return false
}

// Mutation identifies one mutable site in a source file.
//
// ID is 1-based and assigned in tree-traversal order, so the same source always
// yields the same ID for the same site.
type Mutation struct {
	ID            uint         `json:"id" yaml:"id"`
	Kind          MutationKind `json:"kind" yaml:"kind"`
	OriginalToken string       `json:"original" yaml:"original"`
	MutatedToken  string       `json:"mutated" yaml:"mutated"`
	Line          int          `json:"line" yaml:"line"`
	Column        int          `json:"column" yaml:"column"`
	Offset        int          `json:"-" yaml:"-"`
}

// ApplyStrategy records how a mutant was produced.
type ApplyStrategy string

const (
	// StrategyTree rewrites the token located by re-walking the syntax tree.
	StrategyTree ApplyStrategy = "tree"
	// StrategyLine replaces the first matching token on the recorded line.
	StrategyLine ApplyStrategy = "line"
)

// Mutant is the source produced by applying exactly one Mutation.
type Mutant struct {
	Mutation Mutation
	Code     []byte
	Strategy ApplyStrategy
}
