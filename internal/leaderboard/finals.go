package leaderboard

import (
	"encoding/json"
	"fmt"
	"slices"
)

// FinalsRow is a finals entry keyed by the team's original index in the stage
// it qualified from.
type FinalsRow struct {
	OrigIdx int
	Group   string
	Stats   StatRow
}

type finalsJSON struct {
	OrigIdx   int    `json:"origIdx"`
	Group     string `json:"group,omitempty"`
	Team      string `json:"team"`
	WWCD      int    `json:"wwcd"`
	Placement int    `json:"placement"`
	Kills     int    `json:"kills"`
	Total     int    `json:"total"`
}

func (r FinalsRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(finalsJSON{
		OrigIdx:   r.OrigIdx,
		Group:     r.Group,
		Team:      r.Stats.Team,
		WWCD:      r.Stats.WWCD,
		Placement: r.Stats.Placement,
		Kills:     r.Stats.Kills,
		Total:     r.Stats.Total,
	})
}

// A row without an origIdx decodes with -1 and is dropped on load.
func (r *FinalsRow) UnmarshalJSON(data []byte) error {
	var head struct {
		OrigIdx *json.RawMessage `json:"origIdx"`
		Group   string           `json:"group"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var stats StatRow
	if err := json.Unmarshal(data, &stats); err != nil {
		return err
	}

	*r = FinalsRow{OrigIdx: -1, Group: head.Group, Stats: stats}
	if head.OrigIdx != nil {
		var n json.Number
		if json.Unmarshal(*head.OrigIdx, &n) == nil {
			if i, err := n.Int64(); err == nil {
				r.OrigIdx = int(i)
			}
		}
	}
	return nil
}

// SyncFinals rebuilds the finals list from the current qualifiers. A team that
// was already in the finals keeps its stats; its name follows the qualifier.
func SyncFinals(prev []FinalsRow, qualifiers []Qualifier) []FinalsRow {
	existing := make(map[int]FinalsRow, len(prev))
	for _, r := range prev {
		existing[r.OrigIdx] = r
	}

	out := make([]FinalsRow, 0, len(qualifiers))
	for _, q := range qualifiers {
		row, ok := existing[q.OrigIdx]
		if !ok {
			row = FinalsRow{OrigIdx: q.OrigIdx, Stats: NewRow(q.Team)}
		}
		row.Group = q.Group
		row.Stats.Team = q.Team
		out = append(out, row)
	}
	return out
}

// FinalsStandings ranks finals rows by total, keeping list order on ties.
func FinalsStandings(rows []FinalsRow) []AggregateRow {
	out := make([]AggregateRow, len(rows))
	for i, r := range rows {
		out[i] = AggregateRow{
			OrigIdx:   r.OrigIdx,
			Team:      r.Stats.Team,
			WWCD:      r.Stats.WWCD,
			Placement: r.Stats.Placement,
			Kills:     r.Stats.Kills,
			Total:     r.Stats.Total,
		}
	}
	rank(out)
	return out
}

func SetFinalsStat(rows []FinalsRow, origIdx int, f Field, value any) ([]FinalsRow, error) {
	i := slices.IndexFunc(rows, func(r FinalsRow) bool { return r.OrigIdx == origIdx })
	if i < 0 {
		return rows, fmt.Errorf("finals team %d: %w", origIdx, ErrIndexOutOfRange)
	}
	out := slices.Clone(rows)
	out[i].Stats = out[i].Stats.With(f, value)
	return out, nil
}

// NormalizeFinals drops rows without an index and repeats of an index, keeping
// the first, then caps the list at limit.
func NormalizeFinals(rows []FinalsRow, limit int) []FinalsRow {
	out := make([]FinalsRow, 0, len(rows))
	seen := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r.OrigIdx < 0 || seen[r.OrigIdx] {
			continue
		}
		seen[r.OrigIdx] = true
		if r.Stats.Team == "" {
			r.Stats.Team = fmt.Sprintf("Team %d", r.OrigIdx+1)
		}
		out = append(out, r)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
