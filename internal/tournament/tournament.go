package tournament

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/AdamBeresnev/arena-leaderboard/internal/bracket"
	"github.com/AdamBeresnev/arena-leaderboard/internal/leaderboard"
)

var (
	ErrUnknownStage   = errors.New("unknown stage")
	ErrUnknownTarget  = errors.New("unknown reseed target")
	ErrNoBracket      = errors.New("format has no bracket")
	ErrNoFinals       = errors.New("format has no finals")
	ErrNoPointsGroups = errors.New("format has no points groups")
)

// Reseed targets besides stage names.
const (
	TargetFinals  = "finals"
	TargetBracket = "bracket"
)

func isReservedTarget(name string) bool {
	return name == TargetFinals || name == TargetBracket
}

// State is the full editable state of one leaderboard. Every operation on
// Tournament takes a State and returns a new one; the input is never changed.
type State struct {
	Stages []leaderboard.Stage
	Points map[string][]leaderboard.PointsRow
	Finals []leaderboard.FinalsRow
	Teams  []string
	Board  *bracket.Board
}

func (s State) Stage(name string) (leaderboard.Stage, int, bool) {
	for i, st := range s.Stages {
		if st.Name == name {
			return st, i, true
		}
	}
	return leaderboard.Stage{}, -1, false
}

func (s State) shallow() State {
	out := s
	out.Stages = slices.Clone(s.Stages)
	out.Points = maps.Clone(s.Points)
	return out
}

// Tournament binds a format to its bracket propagator.
type Tournament struct {
	Format     Format
	propagator *bracket.Propagator
}

func New(f Format) (*Tournament, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	t := &Tournament{Format: f}
	if f.Bracket != nil {
		w, err := f.Bracket.Wiring()
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", f.ID, err)
		}
		p, err := bracket.NewPropagator(w)
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", f.ID, err)
		}
		t.propagator = p
	}
	return t, nil
}

func (t *Tournament) ID() string {
	return t.Format.ID
}

func (t *Tournament) HasBracket() bool {
	return t.propagator != nil
}

func (t *Tournament) Propagator() *bracket.Propagator {
	return t.propagator
}

// Default is the state of a leaderboard nobody has edited yet.
func (t *Tournament) Default() State {
	s := State{}
	for _, spec := range t.Format.Stages {
		s.Stages = append(s.Stages, leaderboard.NewStage(spec.Layout(), nil))
	}
	if pg := t.Format.PointsGroups; pg != nil {
		s.Points = make(map[string][]leaderboard.PointsRow, len(pg.Letters))
		for _, l := range pg.Letters {
			s.Points[l] = leaderboard.NewPointsGroup(l, pg.Size)
		}
	}
	if t.HasBracket() {
		board := t.seedBoard(s)
		s.Board = &board
	}
	return s
}

// DefaultStage is the empty stage for name, used when a snapshot lacks it.
func (t *Tournament) DefaultStage(name string) (leaderboard.Stage, error) {
	spec, ok := t.Format.StageSpec(name)
	if !ok {
		return leaderboard.Stage{}, fmt.Errorf("%s: %w", name, ErrUnknownStage)
	}
	return leaderboard.NewStage(spec.Layout(), nil), nil
}

func (t *Tournament) stage(s State, name string) (leaderboard.Stage, int, error) {
	st, i, ok := s.Stage(name)
	if !ok {
		return st, i, fmt.Errorf("%s: %w", name, ErrUnknownStage)
	}
	return st, i, nil
}

func (t *Tournament) EditStat(s State, stage, matchKey string, idx int, field leaderboard.Field, value any) (State, error) {
	st, i, err := t.stage(s, stage)
	if err != nil {
		return s, err
	}
	st, err = st.SetStat(matchKey, idx, field, value)
	if err != nil {
		return s, err
	}
	out := s.shallow()
	out.Stages[i] = st
	return out, nil
}

func (t *Tournament) RenameTeam(s State, stage string, idx int, name string) (State, error) {
	st, i, err := t.stage(s, stage)
	if err != nil {
		return s, err
	}
	st, err = st.RenameTeam(idx, name)
	if err != nil {
		return s, err
	}
	out := s.shallow()
	out.Stages[i] = st
	return out, nil
}

// Standings ranks one group of a stage, or the whole stage when group is empty.
func (t *Tournament) Standings(s State, stage, group string) ([]leaderboard.AggregateRow, error) {
	st, _, err := t.stage(s, stage)
	if err != nil {
		return nil, err
	}
	if group == "" {
		return st.Overall(), nil
	}
	return st.GroupStandings(group)
}

func (t *Tournament) MatchStandings(s State, stage, matchKey string) ([]leaderboard.AggregateRow, error) {
	st, _, err := t.stage(s, stage)
	if err != nil {
		return nil, err
	}
	return st.MatchStandings(matchKey)
}

// Qualified lists the teams a stage currently sends on.
func (t *Tournament) Qualified(s State, stage string) ([]leaderboard.Qualifier, error) {
	spec, ok := t.Format.StageSpec(stage)
	if !ok {
		return nil, fmt.Errorf("%s: %w", stage, ErrUnknownStage)
	}
	st, _, err := t.stage(s, stage)
	if err != nil {
		return nil, err
	}
	if spec.Qualify != nil {
		order, _ := leaderboard.ParseOrder(spec.Qualify.Order)
		return leaderboard.Qualify(st, spec.Qualify.Top, order), nil
	}
	if f := t.Format.Finals; f != nil && f.From == stage {
		return t.finalsQualifiers(st), nil
	}
	return nil, nil
}

func (t *Tournament) finalsQualifiers(st leaderboard.Stage) []leaderboard.Qualifier {
	f := t.Format.Finals
	if f.PerGroup > 0 {
		return leaderboard.Qualify(st, f.PerGroup, leaderboard.OrderGroup)
	}
	return leaderboard.QualifyOverall(st, f.Top)
}

// ReseedTargets lists what Reseed accepts for this format, in dependency order.
func (t *Tournament) ReseedTargets() []string {
	var out []string
	for _, spec := range t.Format.Stages {
		if spec.SeededFrom != "" {
			out = append(out, spec.Name)
		}
	}
	if t.Format.Finals != nil {
		out = append(out, TargetFinals)
	}
	if t.HasBracket() {
		out = append(out, TargetBracket)
	}
	return out
}

// Reseed copies qualifiers into the next stage, the finals or the bracket.
// Stats already entered against a stage or finals index are kept. A bracket
// is regenerated from scratch, dropping any results on it.
func (t *Tournament) Reseed(s State, target string) (State, error) {
	switch target {
	case TargetFinals:
		return t.reseedFinals(s)
	case TargetBracket:
		if !t.HasBracket() {
			return s, ErrNoBracket
		}
		out := s.shallow()
		board := t.seedBoard(s)
		out.Board = &board
		return out, nil
	}

	spec, ok := t.Format.StageSpec(target)
	if !ok {
		return s, fmt.Errorf("%s: %w", target, ErrUnknownTarget)
	}
	if spec.SeededFrom == "" {
		return s, fmt.Errorf("stage %s is not seeded from another stage: %w", target, ErrUnknownTarget)
	}
	qs, err := t.Qualified(s, spec.SeededFrom)
	if err != nil {
		return s, err
	}
	st, i, err := t.stage(s, target)
	if err != nil {
		return s, err
	}
	out := s.shallow()
	out.Stages[i] = st.Reseed(leaderboard.Names(qs))
	return out, nil
}

func (t *Tournament) reseedFinals(s State) (State, error) {
	f := t.Format.Finals
	if f == nil {
		return s, ErrNoFinals
	}
	st, _, err := t.stage(s, f.From)
	if err != nil {
		return s, err
	}
	out := s.shallow()
	out.Finals = leaderboard.SyncFinals(s.Finals, t.finalsQualifiers(st))
	return out, nil
}

func (t *Tournament) FinalsLimit() int {
	f := t.Format.Finals
	if f == nil {
		return 0
	}
	groups := 1
	if spec, ok := t.Format.StageSpec(f.From); ok {
		groups = len(spec.Groups.Build())
	}
	return f.Limit(groups)
}

func (t *Tournament) SetFinalsStat(s State, origIdx int, field leaderboard.Field, value any) (State, error) {
	if t.Format.Finals == nil {
		return s, ErrNoFinals
	}
	rows, err := leaderboard.SetFinalsStat(s.Finals, origIdx, field, value)
	if err != nil {
		return s, err
	}
	out := s.shallow()
	out.Finals = rows
	return out, nil
}

func (t *Tournament) FinalsStandings(s State) []leaderboard.AggregateRow {
	return leaderboard.FinalsStandings(s.Finals)
}

// BracketSeeds is the team list the bracket would be seeded with right now.
func (t *Tournament) BracketSeeds(s State) []string {
	b := t.Format.Bracket
	if b == nil {
		return nil
	}
	order, _ := leaderboard.ParseOrder(b.Seed.Order)
	switch b.Seed.From {
	case SeedFromTeams:
		return slices.Clone(s.Teams)
	case SeedFromGroups:
		if t.Format.PointsGroups == nil {
			return nil
		}
		qs := leaderboard.QualifyPoints(s.Points, t.Format.PointsGroups.Letters, b.Seed.Top, order)
		return leaderboard.Names(qs)
	default:
		st, _, ok := s.Stage(b.Seed.From)
		if !ok {
			return nil
		}
		return leaderboard.Names(leaderboard.Qualify(st, b.Seed.Top, order))
	}
}

func (t *Tournament) seedBoard(s State) bracket.Board {
	pairing, _ := bracket.ParsePairing(t.Format.Bracket.Pairing)
	board := bracket.Seed(t.propagator.Template(), t.BracketSeeds(s), pairing)
	return t.propagator.PropagateAll(board)
}

// TemplateBoard is the unseeded board for this format.
func (t *Tournament) TemplateBoard() (bracket.Board, error) {
	if !t.HasBracket() {
		return bracket.Board{}, ErrNoBracket
	}
	return t.propagator.Template(), nil
}

func (t *Tournament) SetScore(s State, ref bracket.MatchRef, scoreA, scoreB int) (State, error) {
	if !t.HasBracket() {
		return s, ErrNoBracket
	}
	board := s.Board
	if board == nil {
		b := t.seedBoard(s)
		board = &b
	}
	next, err := t.propagator.SetScore(*board, ref, scoreA, scoreB)
	if err != nil {
		return s, err
	}
	out := s.shallow()
	out.Board = &next
	return out, nil
}

// SetTeams replaces the hand-edited team list and regenerates the bracket
// from it. Blank names are dropped.
func (t *Tournament) SetTeams(s State, teams []string) (State, error) {
	b := t.Format.Bracket
	if b == nil {
		return s, ErrNoBracket
	}
	clean := make([]string, 0, len(teams))
	for _, name := range teams {
		if name = strings.TrimSpace(name); name != "" {
			clean = append(clean, name)
		}
	}
	if b.Teams > 0 && len(clean) > b.Teams {
		return s, fmt.Errorf("bracket takes at most %d teams, got %d", b.Teams, len(clean))
	}
	out := s.shallow()
	out.Teams = clean
	if b.Seed.From == SeedFromTeams {
		board := t.seedBoard(out)
		out.Board = &board
	}
	return out, nil
}

func (t *Tournament) SetPoints(s State, group string, idx int, field leaderboard.PointsField, value any) (State, error) {
	if t.Format.PointsGroups == nil {
		return s, ErrNoPointsGroups
	}
	rows, ok := s.Points[group]
	if !ok {
		return s, fmt.Errorf("points group %s: %w", group, leaderboard.ErrUnknownGroup)
	}
	rows, err := leaderboard.SetPoints(rows, idx, field, value)
	if err != nil {
		return s, err
	}
	out := s.shallow()
	out.Points[group] = rows
	return out, nil
}

func (t *Tournament) PointsStandings(s State, group string) ([]leaderboard.PointsRow, error) {
	if t.Format.PointsGroups == nil {
		return nil, ErrNoPointsGroups
	}
	rows, ok := s.Points[group]
	if !ok {
		return nil, fmt.Errorf("points group %s: %w", group, leaderboard.ErrUnknownGroup)
	}
	return leaderboard.RankPoints(rows), nil
}
