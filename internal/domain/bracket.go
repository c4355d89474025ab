package domain

import (
	"fmt"
	"slices"
)

// BracketTable is a set of brackets sorted by lower bound, searched by binary
// search. Brackets are expected to be non-overlapping; Check reports when
// they are not, or when they leave gaps.
type BracketTable struct {
	brackets []Bracket
}

// NewBracketTable copies and sorts brackets by Min (then Max, then ID).
func NewBracketTable(brackets []Bracket) BracketTable {
	sorted := slices.Clone(brackets)
	slices.SortFunc(sorted, func(a, b Bracket) int {
		if a.Min != b.Min {
			return a.Min - b.Min
		}
		if a.Max != b.Max {
			return a.Max - b.Max
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return BracketTable{brackets: sorted}
}

// Len returns the number of brackets in the table.
func (t BracketTable) Len() int {
	return len(t.brackets)
}

// Find returns the bracket containing v. The second result is false when no
// bracket contains v, which callers must treat as "no rate", never as 1.0.
func (t BracketTable) Find(v int) (Bracket, bool) {
	// i is the first bracket starting above v; only brackets before it can match.
	i, _ := slices.BinarySearchFunc(t.brackets, v+1, func(b Bracket, target int) int {
		return b.Min - target
	})
	for j := i - 1; j >= 0; j-- {
		if t.brackets[j].Contains(v) {
			return t.brackets[j], true
		}
	}
	return Bracket{}, false
}

// Check verifies the table covers every integer in [lo, hi] exactly once.
// It returns one message per problem found; an empty result means the table
// is exhaustive and non-overlapping over the range.
func (t BracketTable) Check(lo, hi int) []string {
	if len(t.brackets) == 0 {
		return []string{fmt.Sprintf("gap: %d-%d not covered", lo, hi)}
	}

	var problems []string
	covered := lo - 1
	highest := t.brackets[0].Min - 1
	for _, b := range t.brackets {
		if b.Min > b.Max {
			problems = append(problems, fmt.Sprintf("bracket %d: min %d is greater than max %d", b.ID, b.Min, b.Max))
			continue
		}
		if b.Min <= highest {
			problems = append(problems, fmt.Sprintf("overlap: bracket %d (%d-%d) overlaps values up to %d", b.ID, b.Min, b.Max, highest))
		}
		if b.Min > covered+1 && covered < hi {
			problems = append(problems, fmt.Sprintf("gap: %d-%d not covered", covered+1, min(b.Min-1, hi)))
		}
		covered = max(covered, b.Max)
		highest = max(highest, b.Max)
	}
	if covered < hi {
		problems = append(problems, fmt.Sprintf("gap: %d-%d not covered", covered+1, hi))
	}
	return problems
}
