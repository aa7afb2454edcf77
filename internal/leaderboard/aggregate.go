package leaderboard

import "sort"

// AggregateRow is a team's sum over every match key of a stage. Rank is
// positional and recomputed on every call.
type AggregateRow struct {
	Rank      int    `json:"rank"`
	OrigIdx   int    `json:"origIdx"`
	Team      string `json:"team"`
	WWCD      int    `json:"wwcd"`
	Placement int    `json:"placement"`
	Kills     int    `json:"kills"`
	Total     int    `json:"total"`
}

// Aggregate sums the stage's rows for the given indices and orders them by
// total, highest first. Teams on equal totals keep the order of indices.
// A missing row counts as zero.
func Aggregate(s Stage, indices []int) []AggregateRow {
	out := make([]AggregateRow, 0, len(indices))
	for _, idx := range indices {
		row := AggregateRow{OrigIdx: idx, Team: s.TeamName(idx)}
		for _, key := range s.MatchKeys {
			r, ok := s.Row(key, idx)
			if !ok {
				continue
			}
			row.WWCD += r.WWCD
			row.Placement += r.Placement
			row.Kills += r.Kills
		}
		row.Total = row.Placement + row.Kills
		out = append(out, row)
	}
	rank(out)
	return out
}

func rank(rows []AggregateRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

func (s Stage) GroupStandings(letter string) ([]AggregateRow, error) {
	indices, err := s.GroupIndices(letter)
	if err != nil {
		return nil, err
	}
	return Aggregate(s, indices), nil
}

// Overall ranks the whole roster regardless of group.
func (s Stage) Overall() []AggregateRow {
	return Aggregate(s, s.allIndices())
}

// MatchStandings ranks a single match key over the teams in its lobby.
func (s Stage) MatchStandings(key string) ([]AggregateRow, error) {
	indices, err := s.LobbyIndices(key)
	if err != nil {
		return nil, err
	}
	single := s
	single.Layout.MatchKeys = []string{key}
	return Aggregate(single, indices), nil
}
