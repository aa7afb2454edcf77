package bracket

import "slices"

type Kind string

const (
	SingleElimination Kind = "single"
	DoubleElimination Kind = "double"
)

type Column struct {
	Title   string  `json:"title"`
	Matches []Match `json:"matches"`
}

type Bracket struct {
	Columns []Column `json:"columns"`
	Winner  Slot     `json:"winner"`
}

type Placement struct {
	ThirdPlace Match   `json:"thirdPlace"`
	FifthSixth []Match `json:"fifthSixthBracket"`
}

// FinalStage follows the last bracket column when the format has one:
// two semifinals, the final, a third place match and a small 5th/6th bracket.
type FinalStage struct {
	Semifinals []Match   `json:"semifinals"`
	Final      Match     `json:"finals"`
	Placement  Placement `json:"placementMatches"`
}

// Board is everything the propagator reads and writes.
type Board struct {
	Bracket Bracket     `json:"bracket"`
	Finals  *FinalStage `json:"finalStage,omitempty"`
}

func NewFinalStage() *FinalStage {
	return &FinalStage{
		Semifinals: []Match{
			NewMatch("sf1", Unresolved(""), Unresolved("")),
			NewMatch("sf2", Unresolved(""), Unresolved("")),
		},
		Final: NewMatch("final", Unresolved(""), Unresolved("")),
		Placement: Placement{
			ThirdPlace: NewMatch("3rd", Unresolved(""), Unresolved("")),
			FifthSixth: []Match{
				NewMatch("5-6-match1", Unresolved(""), Unresolved("")),
				NewMatch("5-6-match2", Unresolved(""), Unresolved("")),
				NewMatch("5-6-final", Unresolved(""), Unresolved("")),
			},
		},
	}
}

func (b Board) Clone() Board {
	out := Board{Bracket: Bracket{Winner: b.Bracket.Winner}}
	out.Bracket.Columns = make([]Column, len(b.Bracket.Columns))
	for i, c := range b.Bracket.Columns {
		out.Bracket.Columns[i] = Column{Title: c.Title, Matches: slices.Clone(c.Matches)}
	}
	if b.Finals != nil {
		f := *b.Finals
		f.Semifinals = slices.Clone(b.Finals.Semifinals)
		f.Placement.FifthSixth = slices.Clone(b.Finals.Placement.FifthSixth)
		out.Finals = &f
	}
	return out
}

// Match returns a pointer into b so callers working on a clone can edit in place.
func (b *Board) Match(ref MatchRef) (*Match, bool) {
	switch ref.Section {
	case SectionBracket:
		if ref.Column < 0 || ref.Column >= len(b.Bracket.Columns) {
			return nil, false
		}
		matches := b.Bracket.Columns[ref.Column].Matches
		if ref.Index < 0 || ref.Index >= len(matches) {
			return nil, false
		}
		return &matches[ref.Index], true
	case SectionFinals:
		if b.Finals == nil {
			return nil, false
		}
		return b.Finals.match(ref.Column, ref.Index)
	}
	return nil, false
}

// Finals pseudo-columns: semifinals, final, third place, 5th/6th semis, 5th/6th final.
const (
	FinalsSemis = iota
	FinalsFinal
	FinalsThird
	FinalsFifthSixthSemis
	FinalsFifthSixthFinal
)

func (f *FinalStage) match(column, index int) (*Match, bool) {
	switch column {
	case FinalsSemis:
		if index >= 0 && index < len(f.Semifinals) && index < 2 {
			return &f.Semifinals[index], true
		}
	case FinalsFinal:
		if index == 0 {
			return &f.Final, true
		}
	case FinalsThird:
		if index == 0 {
			return &f.Placement.ThirdPlace, true
		}
	case FinalsFifthSixthSemis:
		if index >= 0 && index < 2 && index < len(f.Placement.FifthSixth) {
			return &f.Placement.FifthSixth[index], true
		}
	case FinalsFifthSixthFinal:
		if index == 0 && len(f.Placement.FifthSixth) > 2 {
			return &f.Placement.FifthSixth[2], true
		}
	}
	return nil, false
}

// Refs lists every match on the board in a fixed order.
func (b Board) Refs() []MatchRef {
	var refs []MatchRef
	for c, col := range b.Bracket.Columns {
		for i := range col.Matches {
			refs = append(refs, MatchRef{Section: SectionBracket, Column: c, Index: i})
		}
	}
	if b.Finals != nil {
		for _, ref := range finalsRefs {
			if _, ok := b.Finals.match(ref.Column, ref.Index); ok {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

var finalsRefs = []MatchRef{
	{Section: SectionFinals, Column: FinalsSemis, Index: 0},
	{Section: SectionFinals, Column: FinalsSemis, Index: 1},
	{Section: SectionFinals, Column: FinalsFinal, Index: 0},
	{Section: SectionFinals, Column: FinalsThird, Index: 0},
	{Section: SectionFinals, Column: FinalsFifthSixthSemis, Index: 0},
	{Section: SectionFinals, Column: FinalsFifthSixthSemis, Index: 1},
	{Section: SectionFinals, Column: FinalsFifthSixthFinal, Index: 0},
}

// HasResults reports whether any match on the board has been decided.
func (b Board) HasResults() bool {
	for _, ref := range b.Refs() {
		if m, ok := b.Match(ref); ok && m.Decided() {
			return true
		}
	}
	return false
}
