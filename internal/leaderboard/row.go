package leaderboard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/arena-leaderboard/internal/utils"
)

type Field string

const (
	FieldWWCD      Field = "wwcd"
	FieldPlacement Field = "placement"
	FieldKills     Field = "kills"
)

// ParseField accepts the editable stat names. Free Fire calls a chicken
// dinner a booyah.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wwcd", "booyah":
		return FieldWWCD, nil
	case "placement":
		return FieldPlacement, nil
	case "kills":
		return FieldKills, nil
	}
	return "", fmt.Errorf("unknown stat field %q", s)
}

// StatRow is one team's result in one match. Total is always
// Placement + Kills; WWCD is counted separately and never adds to it.
type StatRow struct {
	Team      string `json:"team"`
	WWCD      int    `json:"wwcd"`
	Placement int    `json:"placement"`
	Kills     int    `json:"kills"`
	Total     int    `json:"total"`
}

func NewRow(team string) StatRow {
	return StatRow{Team: team}
}

// With returns a copy of r with one field set from raw input.
func (r StatRow) With(f Field, value any) StatRow {
	n := utils.Coerce(value)
	switch f {
	case FieldWWCD:
		r.WWCD = n
	case FieldPlacement:
		r.Placement = n
	case FieldKills:
		r.Kills = n
	}
	r.Total = r.Placement + r.Kills
	return r
}

func (r StatRow) Get(f Field) int {
	switch f {
	case FieldWWCD:
		return r.WWCD
	case FieldPlacement:
		return r.Placement
	case FieldKills:
		return r.Kills
	}
	return 0
}

func (r *StatRow) UnmarshalJSON(data []byte) error {
	var raw struct {
		Team      json.RawMessage `json:"team"`
		WWCD      json.RawMessage `json:"wwcd"`
		Booyah    json.RawMessage `json:"booyah"`
		Placement json.RawMessage `json:"placement"`
		Kills     json.RawMessage `json:"kills"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	wwcd := raw.WWCD
	if len(wwcd) == 0 {
		wwcd = raw.Booyah
	}
	*r = StatRow{
		Team:      decodeName(raw.Team),
		WWCD:      utils.CoerceJSON(wwcd),
		Placement: utils.CoerceJSON(raw.Placement),
		Kills:     utils.CoerceJSON(raw.Kills),
	}
	r.Total = r.Placement + r.Kills
	return nil
}

func decodeName(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
