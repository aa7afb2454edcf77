package snapshot

import (
	"slices"
	"time"

	"github.com/AdamBeresnev/arena-leaderboard/internal/bracket"
	"github.com/AdamBeresnev/arena-leaderboard/internal/leaderboard"
	"github.com/AdamBeresnev/arena-leaderboard/internal/tournament"
)

// Load turns a stored snapshot into editable state. A nil snapshot gives the
// format's default state, and every part missing from a snapshot is reset on
// its own. Short rosters are padded with default rows continuing the index
// sequence; longer ones are kept as saved.
func Load(snap *Snapshot, t *tournament.Tournament) tournament.State {
	if snap == nil {
		return t.Default()
	}

	var s tournament.State
	for _, spec := range t.Format.Stages {
		s.Stages = append(s.Stages, loadStage(spec, snap.Stages[spec.Key()]))
	}

	if pg := t.Format.PointsGroups; pg != nil {
		s.Points = make(map[string][]leaderboard.PointsRow, len(pg.Letters))
		for _, l := range pg.Letters {
			if rows, ok := snap.Groups[l]; ok {
				s.Points[l] = leaderboard.PadPointsGroup(l, rows, pg.Size)
			} else {
				s.Points[l] = leaderboard.NewPointsGroup(l, pg.Size)
			}
		}
	}

	if t.Format.Finals != nil {
		s.Finals = leaderboard.NormalizeFinals(snap.Finals, t.FinalsLimit())
	}
	s.Teams = slices.Clone(snap.Teams)

	if t.HasBracket() {
		if snap.Bracket == nil {
			// nothing saved yet, seed from what was loaded
			s, _ = t.Reseed(s, tournament.TargetBracket)
		} else {
			template, _ := t.TemplateBoard()
			board := overlay(template, snap.Bracket, snap.FinalStage)
			s.Board = &board
		}
	}
	return s
}

func loadStage(spec tournament.StageSpec, saved map[string][]leaderboard.StatRow) leaderboard.Stage {
	layout := spec.Layout()
	if saved == nil {
		return leaderboard.NewStage(layout, nil)
	}

	st := leaderboard.Stage{Layout: layout, Matches: make(map[string][]leaderboard.StatRow, len(layout.MatchKeys))}
	size := layout.Groups.Len()
	for _, key := range layout.MatchKeys {
		rows := slices.Clone(saved[key])
		for i := range rows {
			if rows[i].Team == "" {
				rows[i].Team = layout.Placeholder(i)
			}
		}
		for i := len(rows); i < size; i++ {
			rows = append(rows, leaderboard.NewRow(layout.Placeholder(i)))
		}
		st.Matches[key] = rows
	}
	return st
}

// overlay copies saved matches onto the template position by position, so a
// snapshot from an older or damaged layout still yields the current shape.
// Saved slots without a team keep the template's feeder hint.
func overlay(template bracket.Board, saved *bracket.Bracket, finals *bracket.FinalStage) bracket.Board {
	out := template.Clone()
	for c := range out.Bracket.Columns {
		if c >= len(saved.Columns) {
			break
		}
		dst := out.Bracket.Columns[c].Matches
		for i := range dst {
			if i < len(saved.Columns[c].Matches) {
				dst[i] = mergeMatch(dst[i], saved.Columns[c].Matches[i])
			}
		}
	}
	if saved.Winner.Resolved() {
		out.Bracket.Winner = saved.Winner
	}

	if out.Finals != nil && finals != nil {
		src := bracket.Board{Finals: finals}
		for _, ref := range out.Refs() {
			if ref.Section != bracket.SectionFinals {
				continue
			}
			dst, _ := out.Match(ref)
			if m, ok := src.Match(ref); ok {
				*dst = mergeMatch(*dst, *m)
			}
		}
	}
	return out
}

func mergeMatch(template, saved bracket.Match) bracket.Match {
	m := saved
	if m.ID == "" {
		m.ID = template.ID
	}
	if !m.TeamA.Resolved() && m.TeamA.Hint() == "" {
		m.TeamA = template.TeamA
	}
	if !m.TeamB.Resolved() && m.TeamB.Hint() == "" {
		m.TeamB = template.TeamB
	}
	return m
}

// Save captures state in the shape Load reads back.
func Save(s tournament.State, t *tournament.Tournament, now time.Time) Snapshot {
	snap := Snapshot{UpdatedAt: now}
	for _, st := range s.Stages {
		spec, ok := t.Format.StageSpec(st.Name)
		if !ok {
			continue
		}
		if snap.Stages == nil {
			snap.Stages = make(map[string]map[string][]leaderboard.StatRow, len(s.Stages))
		}
		matches := make(map[string][]leaderboard.StatRow, len(st.Matches))
		for key, rows := range st.Matches {
			matches[key] = slices.Clone(rows)
		}
		snap.Stages[spec.Key()] = matches
	}

	if s.Points != nil {
		snap.Groups = make(map[string][]leaderboard.PointsRow, len(s.Points))
		for l, rows := range s.Points {
			snap.Groups[l] = slices.Clone(rows)
		}
	}
	if t.Format.Finals != nil {
		snap.Finals = slices.Clone(s.Finals)
		if snap.Finals == nil {
			snap.Finals = []leaderboard.FinalsRow{}
		}
	}
	snap.Teams = slices.Clone(s.Teams)

	if s.Board != nil {
		board := s.Board.Clone()
		snap.Bracket = &board.Bracket
		snap.FinalStage = board.Finals
	}
	return snap
}
