package bracket

import (
	"encoding/json"

	"github.com/AdamBeresnev/arena-leaderboard/internal/utils"
)

type MatchStatus string

const (
	MatchUpcoming  MatchStatus = "upcoming"
	MatchCompleted MatchStatus = "completed"
)

type Match struct {
	ID     string      `json:"id,omitempty"`
	TeamA  Slot        `json:"teamA"`
	TeamB  Slot        `json:"teamB"`
	ScoreA int         `json:"scoreA"`
	ScoreB int         `json:"scoreB"`
	Status MatchStatus `json:"status"`
	Time   *string     `json:"time,omitempty"`
}

func NewMatch(id string, a, b Slot) Match {
	return Match{ID: id, TeamA: a, TeamB: b, Status: MatchUpcoming}
}

// SetScores overwrites both scores. A match is completed exactly when the
// scores differ.
func (m *Match) SetScores(a, b int) {
	m.ScoreA = max(a, 0)
	m.ScoreB = max(b, 0)
	m.Status = statusFor(m.ScoreA, m.ScoreB)
}

func (m Match) Decided() bool {
	return m.ScoreA != m.ScoreB
}

// Outcome returns the winning and losing slots. Both are unresolved while the
// scores are level.
func (m Match) Outcome() (winner, loser Slot) {
	switch {
	case m.ScoreA > m.ScoreB:
		return m.TeamA, m.TeamB
	case m.ScoreB > m.ScoreA:
		return m.TeamB, m.TeamA
	default:
		return Unresolved(""), Unresolved("")
	}
}

func (m *Match) slot(side Side) *Slot {
	if side == SideB {
		return &m.TeamB
	}
	return &m.TeamA
}

func (m *Match) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     string          `json:"id"`
		TeamA  Slot            `json:"teamA"`
		TeamB  Slot            `json:"teamB"`
		ScoreA json.RawMessage `json:"scoreA"`
		ScoreB json.RawMessage `json:"scoreB"`
		Time   json.RawMessage `json:"time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Match{ID: raw.ID, TeamA: raw.TeamA, TeamB: raw.TeamB}
	m.SetScores(utils.CoerceJSON(raw.ScoreA), utils.CoerceJSON(raw.ScoreB))

	var t string
	if len(raw.Time) > 0 && json.Unmarshal(raw.Time, &t) == nil {
		m.Time = utils.StringOrNil(t)
	}
	return nil
}

func statusFor(a, b int) MatchStatus {
	if a != b {
		return MatchCompleted
	}
	return MatchUpcoming
}
