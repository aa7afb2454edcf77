package leaderboard

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/AdamBeresnev/arena-leaderboard/internal/utils"
)

// PointsRow is a round robin group entry where results are entered as totals
// rather than per match.
type PointsRow struct {
	Rank          int    `json:"rank"`
	Team          string `json:"team"`
	Points        int    `json:"points"`
	GamesPlayed   int    `json:"gamesPlayed"`
	GamesWon      int    `json:"gamesWon"`
	OriginalIndex int    `json:"originalIndex"`
}

type PointsField string

const (
	PointsTotal       PointsField = "points"
	PointsGamesPlayed PointsField = "gamesPlayed"
	PointsGamesWon    PointsField = "gamesWon"
	PointsTeam        PointsField = "team"
)

func ParsePointsField(s string) (PointsField, error) {
	switch f := PointsField(strings.TrimSpace(s)); f {
	case PointsTotal, PointsGamesPlayed, PointsGamesWon, PointsTeam:
		return f, nil
	}
	return "", fmt.Errorf("unknown points field %q", s)
}

// Older saves only carried points; games played and won are estimated from it
// when missing.
func (r *PointsRow) UnmarshalJSON(data []byte) error {
	var raw struct {
		Rank          json.RawMessage `json:"rank"`
		Team          json.RawMessage `json:"team"`
		Points        json.RawMessage `json:"points"`
		GamesPlayed   json.RawMessage `json:"gamesPlayed"`
		GamesWon      json.RawMessage `json:"gamesWon"`
		OriginalIndex json.RawMessage `json:"originalIndex"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = PointsRow{
		Rank:          utils.CoerceJSON(raw.Rank),
		Team:          decodeName(raw.Team),
		Points:        utils.CoerceJSON(raw.Points),
		OriginalIndex: -1,
	}
	if len(raw.OriginalIndex) > 0 && string(raw.OriginalIndex) != "null" {
		r.OriginalIndex = utils.CoerceJSON(raw.OriginalIndex)
	}
	if present(raw.GamesPlayed) {
		r.GamesPlayed = utils.CoerceJSON(raw.GamesPlayed)
	} else {
		r.GamesPlayed = r.Points / 50
	}
	if present(raw.GamesWon) {
		r.GamesWon = utils.CoerceJSON(raw.GamesWon)
	} else {
		r.GamesWon = r.GamesPlayed * 6 / 10
	}
	return nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// PointsGroup placeholder names look like "Team A1".
func PointsPlaceholder(letter string, idx int) string {
	return fmt.Sprintf("Team %s%d", letter, idx+1)
}

func NewPointsGroup(letter string, size int) []PointsRow {
	rows := make([]PointsRow, size)
	for i := range rows {
		rows[i] = PointsRow{Rank: i + 1, Team: PointsPlaceholder(letter, i), OriginalIndex: i}
	}
	return rows
}

// PadPointsGroup fills a short saved group up to size and fixes missing
// original indices. Longer groups are kept as they are.
func PadPointsGroup(letter string, rows []PointsRow, size int) []PointsRow {
	out := slices.Clone(rows)
	for i := range out {
		if out[i].OriginalIndex < 0 {
			out[i].OriginalIndex = i
		}
		if out[i].Rank == 0 {
			out[i].Rank = i + 1
		}
		if out[i].Team == "" {
			out[i].Team = PointsPlaceholder(letter, i)
		}
	}
	for len(out) < size {
		i := len(out)
		out = append(out, PointsRow{Rank: i + 1, Team: PointsPlaceholder(letter, i), OriginalIndex: i})
	}
	return out
}

// RankPoints orders a group by games won, then points, then team name.
func RankPoints(rows []PointsRow) []PointsRow {
	out := slices.Clone(rows)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.GamesWon != b.GamesWon {
			return a.GamesWon > b.GamesWon
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.Team < b.Team
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// SetPoints edits the row whose OriginalIndex is idx.
func SetPoints(rows []PointsRow, idx int, f PointsField, value any) ([]PointsRow, error) {
	i := slices.IndexFunc(rows, func(r PointsRow) bool { return r.OriginalIndex == idx })
	if i < 0 {
		return rows, fmt.Errorf("points row %d: %w", idx, ErrIndexOutOfRange)
	}
	out := slices.Clone(rows)
	switch f {
	case PointsTotal:
		out[i].Points = utils.Coerce(value)
	case PointsGamesPlayed:
		out[i].GamesPlayed = utils.Coerce(value)
	case PointsGamesWon:
		out[i].GamesWon = utils.Coerce(value)
	case PointsTeam:
		name, _ := value.(string)
		name = strings.TrimSpace(name)
		if name == "" {
			name = out[i].Team
		}
		out[i].Team = name
	}
	return out, nil
}

// QualifyPoints takes the top N of each points group in the order of letters.
func QualifyPoints(groups map[string][]PointsRow, letters []string, top int, order Order) []Qualifier {
	ranked := make([][]Qualifier, 0, len(letters))
	for _, l := range letters {
		rows := RankPoints(groups[l])
		qs := make([]Qualifier, len(rows))
		for i, r := range rows {
			qs[i] = Qualifier{Team: r.Team, Group: l, GroupRank: r.Rank, OrigIdx: r.OriginalIndex, Total: r.Points}
		}
		ranked = append(ranked, qs)
	}
	return pick(ranked, top, order)
}
