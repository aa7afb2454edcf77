package views

import (
	"github.com/AdamBeresnev/arena-leaderboard/internal/bracket"
)

// BracketColumn is one rendered column, with the refs needed to post scores.
type BracketColumn struct {
	Title   string
	Column  int
	Matches []bracket.Match
}

type FinalsRound struct {
	Title   string
	Column  int
	Matches []bracket.Match
}

type BracketData struct {
	Upper    []BracketColumn
	Lower    []BracketColumn
	Final    []BracketColumn
	Finals   []FinalsRound
	Champion bracket.Slot
}

// PrepareBracketData splits board columns by the side the wiring puts them
// on. Single elimination columns have no side and all land in Upper.
func PrepareBracketData(w bracket.Wiring, board bracket.Board) BracketData {
	var data BracketData
	for c, col := range board.Bracket.Columns {
		bc := BracketColumn{Title: col.Title, Column: c, Matches: col.Matches}
		side := ""
		if c < len(w.Columns) {
			side = w.Columns[c].Side
		}
		switch side {
		case "lower":
			data.Lower = append(data.Lower, bc)
		case "final":
			data.Final = append(data.Final, bc)
		default:
			data.Upper = append(data.Upper, bc)
		}
	}

	if f := board.Finals; f != nil {
		data.Finals = []FinalsRound{
			{Title: "Semifinals", Column: bracket.FinalsSemis, Matches: f.Semifinals},
			{Title: "Final", Column: bracket.FinalsFinal, Matches: []bracket.Match{f.Final}},
			{Title: "Third Place", Column: bracket.FinalsThird, Matches: []bracket.Match{f.Placement.ThirdPlace}},
		}
		if fs := f.Placement.FifthSixth; len(fs) == 3 {
			data.Finals = append(data.Finals,
				FinalsRound{Title: "5th/6th Semifinals", Column: bracket.FinalsFifthSixthSemis, Matches: fs[:2]},
				FinalsRound{Title: "5th/6th Final", Column: bracket.FinalsFifthSixthFinal, Matches: fs[2:]},
			)
		}
	}
	data.Champion = board.Bracket.Winner
	return data
}
