package leaderboard

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownMatchKey = errors.New("unknown match key")
	ErrUnknownGroup    = errors.New("unknown group")
	ErrIndexOutOfRange = errors.New("team index out of range")
)

// Layout describes a stage independently of any results.
type Layout struct {
	Name      string
	MatchKeys []string
	Groups    Groups
	// Lobbies lists the groups that play each match key. A key with no entry
	// is played by every group.
	Lobbies map[string][]string
	// TeamName is a fmt pattern taking the 1-based index, "Team %d" if empty.
	TeamName string
}

func (l Layout) Placeholder(idx int) string {
	pattern := l.TeamName
	if pattern == "" {
		pattern = "Team %d"
	}
	return fmt.Sprintf(pattern, idx+1)
}

func (l Layout) HasMatchKey(key string) bool {
	return slices.Contains(l.MatchKeys, key)
}

// Stage is a layout plus one row per team per match key, indexed by the
// team's original index.
type Stage struct {
	Layout
	Matches map[string][]StatRow
}

// NewStage builds empty rows for the whole roster. names may be shorter than
// the roster; missing entries get placeholder names.
func NewStage(layout Layout, names []string) Stage {
	size := layout.Groups.Len()
	s := Stage{Layout: layout, Matches: make(map[string][]StatRow, len(layout.MatchKeys))}
	for _, key := range layout.MatchKeys {
		rows := make([]StatRow, size)
		for i := range rows {
			rows[i] = NewRow(nameAt(layout, names, i))
		}
		s.Matches[key] = rows
	}
	return s
}

func nameAt(layout Layout, names []string, i int) string {
	if i < len(names) && strings.TrimSpace(names[i]) != "" {
		return names[i]
	}
	return layout.Placeholder(i)
}

func (s Stage) Clone() Stage {
	out := Stage{Layout: s.Layout, Matches: make(map[string][]StatRow, len(s.Matches))}
	for k, rows := range s.Matches {
		out.Matches[k] = slices.Clone(rows)
	}
	return out
}

// Size is the roster size. Saved data may hold more rows than the groups
// cover; those rows are kept and counted.
func (s Stage) Size() int {
	size := s.Groups.Len()
	for _, rows := range s.Matches {
		size = max(size, len(rows))
	}
	return size
}

// TeamName reads the name from the first match key, like the score sheet does.
func (s Stage) TeamName(idx int) string {
	for _, key := range s.MatchKeys {
		rows := s.Matches[key]
		if idx >= 0 && idx < len(rows) && rows[idx].Team != "" {
			return rows[idx].Team
		}
	}
	return s.Placeholder(idx)
}

func (s Stage) Names() []string {
	names := make([]string, s.Size())
	for i := range names {
		names[i] = s.TeamName(i)
	}
	return names
}

func (s Stage) Row(key string, idx int) (StatRow, bool) {
	rows := s.Matches[key]
	if idx < 0 || idx >= len(rows) {
		return StatRow{}, false
	}
	return rows[idx], true
}

// SetStat returns a copy of s with one cell changed and that row's total
// recomputed.
func (s Stage) SetStat(key string, idx int, f Field, value any) (Stage, error) {
	if !s.HasMatchKey(key) {
		return s, fmt.Errorf("%s/%s: %w", s.Name, key, ErrUnknownMatchKey)
	}
	if idx < 0 || idx >= s.Size() {
		return s, fmt.Errorf("%s/%s/%d: %w", s.Name, key, idx, ErrIndexOutOfRange)
	}
	out := s.Clone()
	rows := out.pad(key, idx+1)
	rows[idx] = rows[idx].With(f, value)
	return out, nil
}

// RenameTeam changes the team name on every match key row at idx.
func (s Stage) RenameTeam(idx int, name string) (Stage, error) {
	if idx < 0 || idx >= s.Size() {
		return s, fmt.Errorf("%s/%d: %w", s.Name, idx, ErrIndexOutOfRange)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.Placeholder(idx)
	}
	out := s.Clone()
	for _, key := range out.MatchKeys {
		rows := out.pad(key, idx+1)
		rows[idx].Team = name
	}
	return out, nil
}

func (s *Stage) pad(key string, n int) []StatRow {
	rows := s.Matches[key]
	for len(rows) < n {
		rows = append(rows, NewRow(s.Placeholder(len(rows))))
	}
	s.Matches[key] = rows
	return rows
}

// Reseed replaces the roster names with names, keeping every stat already
// entered at each index. Indices without a new name fall back to
// placeholders. Calling it twice with the same names is a no-op.
func (s Stage) Reseed(names []string) Stage {
	out := s.Clone()
	size := out.Groups.Len()
	for _, key := range out.MatchKeys {
		rows := out.pad(key, size)
		for i := 0; i < size; i++ {
			rows[i].Team = nameAt(out.Layout, names, i)
		}
	}
	return out
}

func (s Stage) GroupIndices(letter string) ([]int, error) {
	g, ok := s.Groups.Find(letter)
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", s.Name, letter, ErrUnknownGroup)
	}
	return g.Indices(), nil
}

// LobbyIndices lists the teams that play in the given match key.
func (s Stage) LobbyIndices(key string) ([]int, error) {
	if !s.HasMatchKey(key) {
		return nil, fmt.Errorf("%s/%s: %w", s.Name, key, ErrUnknownMatchKey)
	}
	letters, ok := s.Lobbies[key]
	if !ok || len(letters) == 0 {
		return s.allIndices(), nil
	}
	var out []int
	for _, l := range letters {
		g, ok := s.Groups.Find(l)
		if !ok {
			return nil, fmt.Errorf("%s/%s lobby %s: %w", s.Name, key, l, ErrUnknownGroup)
		}
		out = append(out, g.Indices()...)
	}
	return out, nil
}

func (s Stage) allIndices() []int {
	out := make([]int, s.Size())
	for i := range out {
		out[i] = i
	}
	return out
}
