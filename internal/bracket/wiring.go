package bracket

import (
	"fmt"
	"strconv"
	"strings"
)

type Section string

const (
	SectionBracket Section = "bracket"
	SectionFinals  Section = "finals"
)

type MatchRef struct {
	Section Section `json:"section"`
	Column  int     `json:"column"`
	Index   int     `json:"index"`
}

func BracketRef(column, index int) MatchRef {
	return MatchRef{Section: SectionBracket, Column: column, Index: index}
}

func FinalsRef(column, index int) MatchRef {
	return MatchRef{Section: SectionFinals, Column: column, Index: index}
}

func (r MatchRef) String() string {
	return fmt.Sprintf("%s/%d/%d", r.Section, r.Column, r.Index)
}

func (r MatchRef) less(o MatchRef) bool {
	if r.Section != o.Section {
		return r.Section == SectionBracket
	}
	if r.Column != o.Column {
		return r.Column < o.Column
	}
	return r.Index < o.Index
}

type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

func sideFor(index int) Side {
	if index%2 == 0 {
		return SideA
	}
	return SideB
}

type Outcome string

const (
	Winner Outcome = "winner"
	Loser  Outcome = "loser"
)

type Target struct {
	Ref  MatchRef
	Side Side
}

// Route moves one outcome of a match into a slot of a later match, or onto
// the board's champion when Champion is set.
type Route struct {
	From     MatchRef
	Outcome  Outcome
	To       Target
	Champion bool
	// Shown in the target slot while the source match is undecided.
	Hint string
}

type ColumnSpec struct {
	Title   string
	Matches int
	// upper, lower or final; only used to label double elimination feeders.
	Side string
}

type Wiring struct {
	Kind    Kind
	Columns []ColumnSpec
	Finals  bool
	Routes  []Route
}

// Template builds an empty board for the layout, with feeder hints filled in.
func (w Wiring) Template() Board {
	board := Board{Bracket: Bracket{Columns: make([]Column, len(w.Columns))}}
	for c, spec := range w.Columns {
		matches := make([]Match, spec.Matches)
		for i := range matches {
			matches[i] = NewMatch("", Unresolved(""), Unresolved(""))
		}
		board.Bracket.Columns[c] = Column{Title: spec.Title, Matches: matches}
	}
	if w.Finals {
		board.Finals = NewFinalStage()
	}
	for _, r := range w.Routes {
		if r.Champion || r.Hint == "" {
			continue
		}
		if m, ok := board.Match(r.To.Ref); ok {
			*m.slot(r.To.Side) = Unresolved(r.Hint)
		}
	}
	return board
}

// SingleEliminationWiring applies the halving rule between bracket columns:
// match i of column c feeds match i/2 of column c+1, slot A when i is even.
// With finals the last column must hold four matches; winners go to the
// semifinals and losers to the 5th/6th bracket in the same pattern.
func SingleEliminationWiring(columns []ColumnSpec, withFinals bool) (Wiring, error) {
	w := Wiring{Kind: SingleElimination, Columns: columns, Finals: withFinals}
	if len(columns) == 0 {
		return w, fmt.Errorf("single elimination needs at least one column")
	}

	for c := 0; c+1 < len(columns); c++ {
		for i := 0; i < columns[c].Matches; i++ {
			w.Routes = append(w.Routes, Route{
				From:    BracketRef(c, i),
				Outcome: Winner,
				To:      Target{Ref: BracketRef(c+1, i/2), Side: sideFor(i)},
			})
		}
	}

	last := len(columns) - 1
	if !withFinals {
		if columns[last].Matches == 1 {
			w.Routes = append(w.Routes, Route{From: BracketRef(last, 0), Outcome: Winner, Champion: true})
		}
		return w, nil
	}

	if columns[last].Matches != 4 {
		return w, fmt.Errorf("final stage needs a last column of 4 matches, got %d", columns[last].Matches)
	}
	for i := 0; i < 4; i++ {
		w.Routes = append(w.Routes,
			Route{From: BracketRef(last, i), Outcome: Winner, To: Target{Ref: FinalsRef(FinalsSemis, i/2), Side: sideFor(i)}},
			Route{From: BracketRef(last, i), Outcome: Loser, To: Target{Ref: FinalsRef(FinalsFifthSixthSemis, i/2), Side: sideFor(i)}},
		)
	}
	w.Routes = append(w.Routes, finalStageRoutes()...)
	return w, nil
}

func finalStageRoutes() []Route {
	var routes []Route
	for i := 0; i < 2; i++ {
		routes = append(routes,
			Route{From: FinalsRef(FinalsSemis, i), Outcome: Winner, To: Target{Ref: FinalsRef(FinalsFinal, 0), Side: sideFor(i)}},
			Route{From: FinalsRef(FinalsSemis, i), Outcome: Loser, To: Target{Ref: FinalsRef(FinalsThird, 0), Side: sideFor(i)}},
			Route{From: FinalsRef(FinalsFifthSixthSemis, i), Outcome: Winner, To: Target{Ref: FinalsRef(FinalsFifthSixthFinal, 0), Side: sideFor(i)}},
		)
	}
	routes = append(routes, Route{From: FinalsRef(FinalsFinal, 0), Outcome: Winner, Champion: true})
	return routes
}

// TableRoute is one row of a hand-written wiring table, using the
// "column.index" and "column.index.side" notation of format files.
type TableRoute struct {
	From   string
	Winner string
	Loser  string
}

// DoubleEliminationWiring builds routes from a fixed table. champion names the
// match whose winner takes the bracket.
func DoubleEliminationWiring(columns []ColumnSpec, table []TableRoute, champion string) (Wiring, error) {
	w := Wiring{Kind: DoubleElimination, Columns: columns}
	numbers := feederNumbers(columns)

	for _, row := range table {
		from, err := parseRef(row.From)
		if err != nil {
			return w, err
		}
		for _, leg := range []struct {
			outcome Outcome
			spec    string
		}{{Winner, row.Winner}, {Loser, row.Loser}} {
			if leg.spec == "" {
				continue
			}
			to, err := parseTarget(leg.spec)
			if err != nil {
				return w, err
			}
			w.Routes = append(w.Routes, Route{
				From:    from,
				Outcome: leg.outcome,
				To:      to,
				Hint:    feederHint(leg.outcome, columns, numbers, from),
			})
		}
	}

	if champion != "" {
		from, err := parseRef(champion)
		if err != nil {
			return w, err
		}
		w.Routes = append(w.Routes, Route{From: from, Outcome: Winner, Champion: true})
	}
	return w, nil
}

// feederNumbers numbers matches 1..n within each side, earliest column first,
// so the third upper bracket match reads as UB3.
func feederNumbers(columns []ColumnSpec) map[MatchRef]int {
	numbers := make(map[MatchRef]int)
	counts := make(map[string]int)
	for c, spec := range columns {
		for i := 0; i < spec.Matches; i++ {
			counts[spec.Side]++
			numbers[BracketRef(c, i)] = counts[spec.Side]
		}
	}
	return numbers
}

func feederHint(outcome Outcome, columns []ColumnSpec, numbers map[MatchRef]int, from MatchRef) string {
	if from.Section != SectionBracket || from.Column >= len(columns) {
		return ""
	}
	prefix := "UB"
	switch columns[from.Column].Side {
	case "lower":
		prefix = "LB"
	case "final":
		prefix = "GF"
	}
	word := "Winner"
	if outcome == Loser {
		word = "Loser"
	}
	return fmt.Sprintf("%s %s%d", word, prefix, numbers[from])
}

func parseRef(s string) (MatchRef, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 2 {
		return MatchRef{}, fmt.Errorf("bad match reference %q", s)
	}
	col, err1 := strconv.Atoi(parts[0])
	idx, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return MatchRef{}, fmt.Errorf("bad match reference %q", s)
	}
	return BracketRef(col, idx), nil
}

func parseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, ".")
	if i < 0 {
		return Target{}, fmt.Errorf("bad route target %q", s)
	}
	ref, err := parseRef(s[:i])
	if err != nil {
		return Target{}, err
	}
	side := Side(strings.ToUpper(s[i+1:]))
	if side != SideA && side != SideB {
		return Target{}, fmt.Errorf("bad slot %q in route target %q", s[i+1:], s)
	}
	return Target{Ref: ref, Side: side}, nil
}
