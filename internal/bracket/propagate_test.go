package bracket

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleElim(t *testing.T, sizes []int, finals bool) *Propagator {
	t.Helper()
	cols := make([]ColumnSpec, len(sizes))
	for i, n := range sizes {
		cols[i] = ColumnSpec{Title: "Round", Matches: n}
	}
	w, err := SingleEliminationWiring(cols, finals)
	require.NoError(t, err)
	p, err := NewPropagator(w)
	require.NoError(t, err)
	return p
}

// Same table the mobile legends formats use.
func doubleElimTable() ([]ColumnSpec, []TableRoute) {
	cols := []ColumnSpec{
		{Title: "Upper • Quarterfinals", Matches: 4, Side: "upper"},
		{Title: "Upper • Semifinals", Matches: 2, Side: "upper"},
		{Title: "Upper • Final", Matches: 1, Side: "upper"},
		{Title: "Lower • Round 1 (Elimination)", Matches: 2, Side: "lower"},
		{Title: "Lower • Quarterfinals", Matches: 2, Side: "lower"},
		{Title: "Lower • Semifinal", Matches: 1, Side: "lower"},
		{Title: "Lower • Final", Matches: 1, Side: "lower"},
		{Title: "Grand Final", Matches: 1, Side: "final"},
	}
	table := []TableRoute{
		{From: "0.0", Winner: "1.0.A", Loser: "3.0.A"},
		{From: "0.1", Winner: "1.0.B", Loser: "3.0.B"},
		{From: "0.2", Winner: "1.1.A", Loser: "3.1.A"},
		{From: "0.3", Winner: "1.1.B", Loser: "3.1.B"},
		{From: "1.0", Winner: "2.0.A", Loser: "4.1.B"},
		{From: "1.1", Winner: "2.0.B", Loser: "4.0.B"},
		{From: "2.0", Winner: "7.0.A", Loser: "6.0.A"},
		{From: "3.0", Winner: "4.0.A"},
		{From: "3.1", Winner: "4.1.A"},
		{From: "4.0", Winner: "5.0.A"},
		{From: "4.1", Winner: "5.0.B"},
		{From: "5.0", Winner: "6.0.B"},
		{From: "6.0", Winner: "7.0.B"},
	}
	return cols, table
}

func setScore(t *testing.T, p *Propagator, b Board, ref MatchRef, a, bScore int) Board {
	t.Helper()
	out, err := p.SetScore(b, ref, a, bScore)
	require.NoError(t, err)
	return out
}

func TestSingleEliminationAdvanceAndRevert(t *testing.T) {
	p := singleElim(t, []int{2, 1}, false)
	board := Seed(p.Template(), []string{"Team A", "Team B", "Team C", "Team D"}, PairSequential)

	board = setScore(t, p, board, BracketRef(0, 0), 2, 1)
	next := board.Bracket.Columns[1].Matches[0]
	assert.Equal(t, "Team A", next.TeamA.Name())
	assert.False(t, next.TeamB.Resolved())
	assert.Equal(t, MatchCompleted, board.Bracket.Columns[0].Matches[0].Status)

	board = setScore(t, p, board, BracketRef(0, 0), 1, 1)
	next = board.Bracket.Columns[1].Matches[0]
	assert.False(t, next.TeamA.Resolved())
	assert.Equal(t, Unassigned, next.TeamA.String())
	assert.Equal(t, MatchUpcoming, board.Bracket.Columns[0].Matches[0].Status)
}

func TestPropagateOddIndexFeedsSlotB(t *testing.T) {
	p := singleElim(t, []int{4, 2, 1}, false)
	board := Seed(p.Template(), []string{"1", "2", "3", "4", "5", "6", "7", "8"}, PairSequential)

	board = setScore(t, p, board, BracketRef(0, 3), 0, 3)
	assert.Equal(t, "8", board.Bracket.Columns[1].Matches[1].TeamB.Name())
	assert.False(t, board.Bracket.Columns[1].Matches[1].TeamA.Resolved())
}

func TestPropagateIsTransitive(t *testing.T) {
	p := singleElim(t, []int{4, 2, 1}, false)
	board := Seed(p.Template(), []string{"1", "2", "3", "4", "5", "6", "7", "8"}, PairSequential)

	board = setScore(t, p, board, BracketRef(0, 0), 3, 0)
	board = setScore(t, p, board, BracketRef(0, 1), 3, 0)
	board = setScore(t, p, board, BracketRef(1, 0), 2, 0)
	board = setScore(t, p, board, BracketRef(0, 2), 1, 0)
	board = setScore(t, p, board, BracketRef(0, 3), 1, 0)
	board = setScore(t, p, board, BracketRef(1, 1), 0, 2)
	board = setScore(t, p, board, BracketRef(2, 0), 1, 0)
	require.Equal(t, "1", board.Bracket.Winner.Name())

	// Undoing the first result clears everything downstream of it, but the
	// later scores stay as entered.
	board = setScore(t, p, board, BracketRef(0, 0), 0, 0)
	assert.False(t, board.Bracket.Columns[1].Matches[0].TeamA.Resolved())
	assert.False(t, board.Bracket.Columns[2].Matches[0].TeamA.Resolved())
	assert.False(t, board.Bracket.Winner.Resolved())
	assert.Equal(t, 2, board.Bracket.Columns[1].Matches[0].ScoreA)
	assert.Equal(t, "7", board.Bracket.Columns[2].Matches[0].TeamB.Name())
}

func TestPropagateIsIdempotent(t *testing.T) {
	p := singleElim(t, []int{4, 2, 1}, false)
	board := Seed(p.Template(), []string{"1", "2", "3", "4", "5", "6", "7", "8"}, PairFold)
	board = setScore(t, p, board, BracketRef(0, 0), 2, 1)
	board = setScore(t, p, board, BracketRef(0, 1), 0, 1)

	once, err := p.Propagate(board, BracketRef(0, 0))
	require.NoError(t, err)
	twice, err := p.Propagate(once, BracketRef(0, 0))
	require.NoError(t, err)

	if diff := cmp.Diff(once, twice, cmp.AllowUnexported(Slot{})); diff != "" {
		t.Errorf("second propagation changed the board (-once +twice):\n%s", diff)
	}
}

func TestPropagateDoesNotModifyInput(t *testing.T) {
	p := singleElim(t, []int{2, 1}, false)
	board := Seed(p.Template(), []string{"A", "B", "C", "D"}, PairSequential)
	before := board.Clone()

	_, err := p.SetScore(board, BracketRef(0, 1), 0, 5)
	require.NoError(t, err)

	if diff := cmp.Diff(before, board, cmp.AllowUnexported(Slot{})); diff != "" {
		t.Errorf("input board changed:\n%s", diff)
	}
}

func TestWinnerAndLoserAreExclusive(t *testing.T) {
	cols, table := doubleElimTable()
	w, err := DoubleEliminationWiring(cols, table, "7.0")
	require.NoError(t, err)
	p, err := NewPropagator(w)
	require.NoError(t, err)

	slot := func(b Board, col, idx int, side string) Slot {
		m := b.Bracket.Columns[col].Matches[idx]
		if side == "A" {
			return m.TeamA
		}
		return m.TeamB
	}

	testCases := []struct {
		name           string
		from           int
		scoreA, scoreB int
		winCol, winIdx int
		winSide        string
		loseCol        int
		loseIdx        int
		loseSide       string
	}{
		{name: "quarterfinal 1 team A wins", from: 0, scoreA: 2, scoreB: 1, winCol: 1, winIdx: 0, winSide: "A", loseCol: 3, loseIdx: 0, loseSide: "A"},
		{name: "quarterfinal 2 team B wins", from: 1, scoreA: 0, scoreB: 3, winCol: 1, winIdx: 0, winSide: "B", loseCol: 3, loseIdx: 0, loseSide: "B"},
		{name: "quarterfinal 3 team A wins", from: 2, scoreA: 1, scoreB: 0, winCol: 1, winIdx: 1, winSide: "A", loseCol: 3, loseIdx: 1, loseSide: "A"},
		{name: "quarterfinal 4 team B wins", from: 3, scoreA: 1, scoreB: 2, winCol: 1, winIdx: 1, winSide: "B", loseCol: 3, loseIdx: 1, loseSide: "B"},
	}

	board := Seed(p.Template(), []string{"S1", "S2", "S3", "S4", "S5", "S6", "S7", "S8"}, PairFold)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := board.Bracket.Columns[0].Matches[tc.from]
			winner, loser := src.TeamA.Name(), src.TeamB.Name()
			if tc.scoreB > tc.scoreA {
				winner, loser = loser, winner
			}

			board = setScore(t, p, board, BracketRef(0, tc.from), tc.scoreA, tc.scoreB)

			up := slot(board, tc.winCol, tc.winIdx, tc.winSide)
			down := slot(board, tc.loseCol, tc.loseIdx, tc.loseSide)
			assert.Equal(t, winner, up.Name())
			assert.Equal(t, loser, down.Name())
			assert.NotEqual(t, up.Name(), down.Name())
		})
	}

	tc := testCases[2]
	board = setScore(t, p, board, BracketRef(0, tc.from), 1, 1)
	assert.False(t, slot(board, tc.winCol, tc.winIdx, tc.winSide).Resolved())
	assert.False(t, slot(board, tc.loseCol, tc.loseIdx, tc.loseSide).Resolved())
	assert.True(t, slot(board, 1, 1, "B").Resolved(), "other feeder is untouched")
}

func TestDoubleEliminationRoutes(t *testing.T) {
	cols, table := doubleElimTable()
	w, err := DoubleEliminationWiring(cols, table, "7.0")
	require.NoError(t, err)
	p, err := NewPropagator(w)
	require.NoError(t, err)

	template := p.Template()
	assert.Equal(t, "Winner UB1", template.Bracket.Columns[1].Matches[0].TeamA.String())
	assert.Equal(t, "Loser UB6", template.Bracket.Columns[4].Matches[0].TeamB.String())
	assert.Equal(t, "Loser UB7", template.Bracket.Columns[6].Matches[0].TeamA.String())
	assert.Equal(t, "Winner LB6", template.Bracket.Columns[7].Matches[0].TeamB.String())

	board := Seed(template, []string{"S1", "S2", "S3", "S4", "S5", "S6", "S7", "S8"}, PairFold)
	assert.Equal(t, "S1", board.Bracket.Columns[0].Matches[0].TeamA.Name())
	assert.Equal(t, "S8", board.Bracket.Columns[0].Matches[0].TeamB.Name())

	board = setScore(t, p, board, BracketRef(0, 0), 2, 0)
	board = setScore(t, p, board, BracketRef(0, 1), 0, 2)
	assert.Equal(t, "S1", board.Bracket.Columns[1].Matches[0].TeamA.Name())
	assert.Equal(t, "S7", board.Bracket.Columns[1].Matches[0].TeamB.Name())
	assert.Equal(t, "S8", board.Bracket.Columns[3].Matches[0].TeamA.Name())
	assert.Equal(t, "S2", board.Bracket.Columns[3].Matches[0].TeamB.Name())

	board = setScore(t, p, board, BracketRef(1, 0), 0, 1)
	assert.Equal(t, "S7", board.Bracket.Columns[2].Matches[0].TeamA.Name())
	assert.Equal(t, "S1", board.Bracket.Columns[4].Matches[1].TeamB.Name())

	// A level score puts the feeder hint back.
	board = setScore(t, p, board, BracketRef(1, 0), 1, 1)
	assert.Equal(t, "Winner UB5", board.Bracket.Columns[2].Matches[0].TeamA.String())
	assert.Equal(t, "Loser UB5", board.Bracket.Columns[4].Matches[1].TeamB.String())
}

func TestFinalStageFeeds(t *testing.T) {
	p := singleElim(t, []int{16, 8, 4}, true)
	teams := make([]string, 32)
	for i := range teams {
		teams[i] = string(rune('a'+i%26)) + string(rune('0'+i/26))
	}
	board := Seed(p.Template(), teams, PairSequential)
	require.NotNil(t, board.Finals)

	for i := 0; i < 16; i++ {
		board = setScore(t, p, board, BracketRef(0, i), 1, 0)
	}
	for i := 0; i < 8; i++ {
		board = setScore(t, p, board, BracketRef(1, i), 1, 0)
	}
	for i := 0; i < 4; i++ {
		board = setScore(t, p, board, BracketRef(2, i), 0, 1)
	}

	qf := board.Bracket.Columns[2].Matches
	assert.Equal(t, qf[0].TeamB.Name(), board.Finals.Semifinals[0].TeamA.Name())
	assert.Equal(t, qf[1].TeamB.Name(), board.Finals.Semifinals[0].TeamB.Name())
	assert.Equal(t, qf[3].TeamB.Name(), board.Finals.Semifinals[1].TeamB.Name())
	assert.Equal(t, qf[2].TeamA.Name(), board.Finals.Placement.FifthSixth[1].TeamA.Name())

	board = setScore(t, p, board, FinalsRef(FinalsSemis, 0), 3, 1)
	board = setScore(t, p, board, FinalsRef(FinalsSemis, 1), 0, 3)
	assert.Equal(t, board.Finals.Semifinals[0].TeamA.Name(), board.Finals.Final.TeamA.Name())
	assert.Equal(t, board.Finals.Semifinals[1].TeamB.Name(), board.Finals.Final.TeamB.Name())
	assert.Equal(t, board.Finals.Semifinals[0].TeamB.Name(), board.Finals.Placement.ThirdPlace.TeamA.Name())

	board = setScore(t, p, board, FinalsRef(FinalsFifthSixthSemis, 1), 2, 0)
	assert.Equal(t, qf[2].TeamA.Name(), board.Finals.Placement.FifthSixth[2].TeamB.Name())

	board = setScore(t, p, board, FinalsRef(FinalsFinal, 0), 2, 1)
	assert.Equal(t, board.Finals.Final.TeamA.Name(), board.Bracket.Winner.Name())
}

func TestNewPropagatorRejectsBadWiring(t *testing.T) {
	cols := []ColumnSpec{{Matches: 2}, {Matches: 1}}

	testCases := []struct {
		name  string
		table []TableRoute
	}{
		{
			name:  "cycle",
			table: []TableRoute{{From: "0.0", Winner: "1.0.A"}, {From: "1.0", Winner: "0.0.A"}},
		},
		{
			name:  "slot fed twice",
			table: []TableRoute{{From: "0.0", Winner: "1.0.A"}, {From: "0.1", Winner: "1.0.A"}},
		},
		{
			name:  "target out of range",
			table: []TableRoute{{From: "0.0", Winner: "5.0.A"}},
		},
		{
			name:  "source out of range",
			table: []TableRoute{{From: "0.7", Winner: "1.0.A"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := DoubleEliminationWiring(cols, tc.table, "")
			require.NoError(t, err)
			_, err = NewPropagator(w)
			assert.Error(t, err)
		})
	}
}

func TestSetScoreUnknownMatch(t *testing.T) {
	p := singleElim(t, []int{2, 1}, false)
	_, err := p.SetScore(p.Template(), BracketRef(4, 0), 1, 0)
	assert.ErrorIs(t, err, ErrUnknownMatch)

	_, err = p.SetScore(p.Template(), FinalsRef(FinalsSemis, 0), 1, 0)
	assert.ErrorIs(t, err, ErrUnknownMatch)
}

func TestFinalStageNeedsFourQuarterfinals(t *testing.T) {
	_, err := SingleEliminationWiring([]ColumnSpec{{Matches: 4}, {Matches: 2}}, true)
	assert.Error(t, err)
}
