package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/AdamBeresnev/arena-leaderboard/internal/bracket"
	"github.com/AdamBeresnev/arena-leaderboard/internal/leaderboard"
)

const (
	keyGroups     = "groups"
	keyFinals     = "finals"
	keyTeams      = "teams"
	keyBracket    = "bracket"
	keyFinalStage = "finalStage"
)

// Snapshot is the persisted form of one leaderboard. On the wire it is a
// single JSON object: the known keys below plus one key per stage payload,
// each mapping match keys to rows.
type Snapshot struct {
	Stages     map[string]map[string][]leaderboard.StatRow
	Groups     map[string][]leaderboard.PointsRow
	Finals     []leaderboard.FinalsRow
	Teams      []string
	Bracket    *bracket.Bracket
	FinalStage *bracket.FinalStage

	// UpdatedAt is owned by the store and never part of the payload.
	UpdatedAt time.Time `json:"-"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Stages)+5)
	for key, matches := range s.Stages {
		out[key] = matches
	}
	if s.Groups != nil {
		out[keyGroups] = s.Groups
	}
	if s.Finals != nil {
		out[keyFinals] = s.Finals
	}
	if s.Teams != nil {
		out[keyTeams] = s.Teams
	}
	if s.Bracket != nil {
		out[keyBracket] = s.Bracket
	}
	if s.FinalStage != nil {
		out[keyFinalStage] = s.FinalStage
	}
	return json.Marshal(out)
}

// UnmarshalJSON is forgiving: a known key with the wrong shape is dropped
// and later reset to its default by Load, and unknown keys that are not
// match data are ignored.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("snapshot is not an object: %w", err)
	}

	*s = Snapshot{UpdatedAt: s.UpdatedAt}
	for key, value := range raw {
		switch key {
		case keyGroups:
			var groups map[string][]leaderboard.PointsRow
			if json.Unmarshal(value, &groups) == nil {
				s.Groups = groups
			}
		case keyFinals:
			var rows []leaderboard.FinalsRow
			if json.Unmarshal(value, &rows) == nil {
				s.Finals = rows
			}
		case keyTeams:
			var teams []string
			if json.Unmarshal(value, &teams) == nil {
				s.Teams = teams
			}
		case keyBracket:
			var b bracket.Bracket
			if json.Unmarshal(value, &b) == nil && len(b.Columns) > 0 {
				s.Bracket = &b
			}
		case keyFinalStage:
			var f bracket.FinalStage
			if json.Unmarshal(value, &f) == nil {
				s.FinalStage = &f
			}
		default:
			var matches map[string][]leaderboard.StatRow
			if json.Unmarshal(value, &matches) != nil || matches == nil {
				continue
			}
			if s.Stages == nil {
				s.Stages = make(map[string]map[string][]leaderboard.StatRow)
			}
			s.Stages[key] = matches
		}
	}
	return nil
}
