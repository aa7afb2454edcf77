package tournament

import (
	"fmt"
	"slices"

	"github.com/AdamBeresnev/arena-leaderboard/internal/bracket"
	"github.com/AdamBeresnev/arena-leaderboard/internal/leaderboard"
)

// Wildcard matches any event or game id in a format's match rule.
const Wildcard = "*"

// Top level snapshot fields a stage payload key must not shadow.
var snapshotFields = []string{"groups", "finals", "teams", "bracket", "finalStage"}

// Format is the static description of one competition, loaded from YAML.
type Format struct {
	ID             string       `yaml:"id" json:"id"`
	Name           string       `yaml:"name" json:"name"`
	Match          MatchRule    `yaml:"match" json:"match"`
	LeaderboardKey string       `yaml:"leaderboardKey" json:"leaderboardKey"`
	Stages         []StageSpec  `yaml:"stages" json:"stages,omitempty"`
	PointsGroups   *GroupsSpec  `yaml:"pointsGroups" json:"pointsGroups,omitempty"`
	Finals         *FinalsSpec  `yaml:"finals" json:"finals,omitempty"`
	Bracket        *BracketSpec `yaml:"bracket" json:"bracket,omitempty"`
}

type MatchRule struct {
	Events []string `yaml:"events" json:"events"`
	Games  []string `yaml:"games" json:"games"`
}

// score ranks how specifically a rule matches; -1 means no match.
func (m MatchRule) score(eventID, gameID string) int {
	ev := matchOne(m.Events, eventID)
	gm := matchOne(m.Games, gameID)
	if ev < 0 || gm < 0 {
		return -1
	}
	return ev + gm
}

func matchOne(ids []string, id string) int {
	if slices.Contains(ids, id) {
		return 2
	}
	if slices.Contains(ids, Wildcard) {
		return 0
	}
	return -1
}

// GroupsSpec is either letters with an even size or explicit ranges.
type GroupsSpec struct {
	Letters []string                 `yaml:"letters" json:"letters,omitempty"`
	Size    int                      `yaml:"size" json:"size,omitempty"`
	Ranges  []leaderboard.GroupRange `yaml:"ranges" json:"ranges,omitempty"`
}

func (g GroupsSpec) Build() leaderboard.Groups {
	if len(g.Ranges) > 0 {
		return leaderboard.Groups(slices.Clone(g.Ranges))
	}
	return leaderboard.EvenGroups(g.Letters, g.Size)
}

type QualifySpec struct {
	Top   int    `yaml:"top" json:"top"`
	Order string `yaml:"order" json:"order,omitempty"`
}

type StageSpec struct {
	Name       string              `yaml:"name" json:"name"`
	PayloadKey string              `yaml:"payloadKey" json:"payloadKey,omitempty"`
	TeamName   string              `yaml:"teamName" json:"teamName,omitempty"`
	Teams      int                 `yaml:"teams" json:"teams"`
	SeededFrom string              `yaml:"seededFrom" json:"seededFrom,omitempty"`
	MatchKeys  []string            `yaml:"matchKeys" json:"matchKeys"`
	Groups     GroupsSpec          `yaml:"groups" json:"groups"`
	Lobbies    map[string][]string `yaml:"lobbies" json:"lobbies,omitempty"`
	Qualify    *QualifySpec        `yaml:"qualify" json:"qualify,omitempty"`
}

// Key is the snapshot field holding this stage's match data.
func (s StageSpec) Key() string {
	if s.PayloadKey != "" {
		return s.PayloadKey
	}
	return s.Name
}

func (s StageSpec) Layout() leaderboard.Layout {
	return leaderboard.Layout{
		Name:      s.Name,
		MatchKeys: slices.Clone(s.MatchKeys),
		Groups:    s.Groups.Build(),
		Lobbies:   s.Lobbies,
		TeamName:  s.TeamName,
	}
}

// FinalsSpec takes either the overall top N of a stage or the top N of each
// of its groups.
type FinalsSpec struct {
	From     string `yaml:"from" json:"from"`
	Top      int    `yaml:"top" json:"top,omitempty"`
	PerGroup int    `yaml:"perGroup" json:"perGroup,omitempty"`
}

func (f FinalsSpec) Limit(groups int) int {
	if f.PerGroup > 0 {
		return f.PerGroup * groups
	}
	return f.Top
}

// SeedSpec says where bracket teams come from: "groups" for points groups,
// "teams" for a hand-edited team list, or the name of a stage.
type SeedSpec struct {
	From  string `yaml:"from" json:"from"`
	Top   int    `yaml:"top" json:"top,omitempty"`
	Order string `yaml:"order" json:"order,omitempty"`
}

const (
	SeedFromGroups = "groups"
	SeedFromTeams  = "teams"
)

type ColumnYAML struct {
	Title   string `yaml:"title" json:"title"`
	Matches int    `yaml:"matches" json:"matches"`
	Side    string `yaml:"side" json:"side,omitempty"`
}

type RouteYAML struct {
	From   string `yaml:"from" json:"from"`
	Winner string `yaml:"winner" json:"winner,omitempty"`
	Loser  string `yaml:"loser" json:"loser,omitempty"`
}

type BracketSpec struct {
	Kind       string       `yaml:"kind" json:"kind"`
	Teams      int          `yaml:"teams" json:"teams,omitempty"`
	Pairing    string       `yaml:"pairing" json:"pairing,omitempty"`
	FinalStage bool         `yaml:"finalStage" json:"finalStage,omitempty"`
	Seed       SeedSpec     `yaml:"seed" json:"seed"`
	Columns    []ColumnYAML `yaml:"columns" json:"columns"`
	Routes     []RouteYAML  `yaml:"routes" json:"routes,omitempty"`
	Champion   string       `yaml:"champion" json:"champion,omitempty"`
}

func (b BracketSpec) Wiring() (bracket.Wiring, error) {
	cols := make([]bracket.ColumnSpec, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = bracket.ColumnSpec{Title: c.Title, Matches: c.Matches, Side: c.Side}
	}

	switch bracket.Kind(b.Kind) {
	case bracket.SingleElimination, "":
		return bracket.SingleEliminationWiring(cols, b.FinalStage)
	case bracket.DoubleElimination:
		table := make([]bracket.TableRoute, len(b.Routes))
		for i, r := range b.Routes {
			table[i] = bracket.TableRoute{From: r.From, Winner: r.Winner, Loser: r.Loser}
		}
		return bracket.DoubleEliminationWiring(cols, table, b.Champion)
	}
	return bracket.Wiring{}, fmt.Errorf("unknown bracket kind %q", b.Kind)
}

func (f Format) StageSpec(name string) (StageSpec, bool) {
	for _, s := range f.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageSpec{}, false
}

// Validate checks a format is internally consistent. Bracket wiring is
// checked separately when the propagator is built.
func (f Format) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("format without id")
	}
	if len(f.Match.Events) == 0 || len(f.Match.Games) == 0 {
		return fmt.Errorf("format %s: match rule needs events and games", f.ID)
	}

	seen := make(map[string]bool)
	for _, s := range f.Stages {
		if s.Name == "" || seen[s.Name] {
			return fmt.Errorf("format %s: stage name %q missing or repeated", f.ID, s.Name)
		}
		if isReservedTarget(s.Name) {
			return fmt.Errorf("format %s: stage name %q is reserved", f.ID, s.Name)
		}
		if slices.Contains(snapshotFields, s.Key()) {
			return fmt.Errorf("format %s: stage %s payload key %q is reserved", f.ID, s.Name, s.Key())
		}
		if len(s.MatchKeys) == 0 {
			return fmt.Errorf("format %s: stage %s has no match keys", f.ID, s.Name)
		}
		groups := s.Groups.Build()
		teams := s.Teams
		if teams == 0 {
			teams = groups.Len()
		}
		if err := groups.Validate(teams); err != nil {
			return fmt.Errorf("format %s: stage %s: %w", f.ID, s.Name, err)
		}
		for key, letters := range s.Lobbies {
			if !slices.Contains(s.MatchKeys, key) {
				return fmt.Errorf("format %s: stage %s: lobby for unknown match key %s", f.ID, s.Name, key)
			}
			for _, l := range letters {
				if _, ok := groups.Find(l); !ok {
					return fmt.Errorf("format %s: stage %s: lobby %s names unknown group %s", f.ID, s.Name, key, l)
				}
			}
		}
		if s.SeededFrom != "" {
			src, ok := f.StageSpec(s.SeededFrom)
			if !ok || !seen[src.Name] {
				return fmt.Errorf("format %s: stage %s is seeded from %q which is not an earlier stage", f.ID, s.Name, s.SeededFrom)
			}
			if src.Qualify == nil {
				return fmt.Errorf("format %s: stage %s has no qualify rule", f.ID, src.Name)
			}
		}
		if s.Qualify != nil {
			if s.Qualify.Top <= 0 {
				return fmt.Errorf("format %s: stage %s: qualify top must be positive, got %d", f.ID, s.Name, s.Qualify.Top)
			}
			if _, err := leaderboard.ParseOrder(s.Qualify.Order); err != nil {
				return fmt.Errorf("format %s: stage %s: %w", f.ID, s.Name, err)
			}
		}
		seen[s.Name] = true
	}

	if f.PointsGroups != nil {
		if len(f.PointsGroups.Letters) == 0 || f.PointsGroups.Size <= 0 {
			return fmt.Errorf("format %s: points groups need letters and a size", f.ID)
		}
	}

	if f.Finals != nil {
		if _, ok := f.StageSpec(f.Finals.From); !ok {
			return fmt.Errorf("format %s: finals come from unknown stage %q", f.ID, f.Finals.From)
		}
		if f.Finals.Top < 0 || f.Finals.PerGroup < 0 || (f.Finals.Top == 0 && f.Finals.PerGroup == 0) {
			return fmt.Errorf("format %s: finals need top or perGroup", f.ID)
		}
	}

	if b := f.Bracket; b != nil {
		if _, err := bracket.ParsePairing(b.Pairing); err != nil {
			return fmt.Errorf("format %s: %w", f.ID, err)
		}
		if b.Seed.Top < 0 || (b.Seed.From != SeedFromTeams && b.Seed.Top == 0) {
			return fmt.Errorf("format %s: bracket seed top must be positive, got %d", f.ID, b.Seed.Top)
		}
		switch b.Seed.From {
		case SeedFromTeams:
		case SeedFromGroups:
			if f.PointsGroups == nil {
				return fmt.Errorf("format %s: bracket seeded from groups without points groups", f.ID)
			}
		default:
			if _, ok := f.StageSpec(b.Seed.From); !ok {
				return fmt.Errorf("format %s: bracket seeded from unknown source %q", f.ID, b.Seed.From)
			}
		}
		if _, err := leaderboard.ParseOrder(b.Seed.Order); err != nil {
			return fmt.Errorf("format %s: %w", f.ID, err)
		}
	}
	return nil
}
