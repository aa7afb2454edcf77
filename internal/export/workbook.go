// Package export writes a leaderboard state out as an xlsx workbook, one
// sheet per table shown on the leaderboard page.
package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/AdamBeresnev/arena-leaderboard/internal/bracket"
	"github.com/AdamBeresnev/arena-leaderboard/internal/leaderboard"
	"github.com/AdamBeresnev/arena-leaderboard/internal/tournament"
)

const maxSheetName = 31

var (
	standingsHeader = []any{"Rank", "Team", "WWCD", "Placement", "Kills", "Total"}
	pointsHeader    = []any{"Rank", "Team", "Games Won", "Games Played", "Points"}
	bracketHeader   = []any{"Round", "Match", "Team A", "Score A", "Score B", "Team B", "Status"}
)

// Workbook builds the export for one tournament state. Every stage gets an
// overall sheet plus one sheet per group when it has more than one.
func Workbook(t *tournament.Tournament, s tournament.State) (*excelize.File, error) {
	f := excelize.NewFile()
	b := &builder{f: f}

	for _, st := range s.Stages {
		if err := b.standings(st.Name, st.Overall()); err != nil {
			f.Close()
			return nil, err
		}
		if len(st.Groups) < 2 {
			continue
		}
		for _, letter := range st.Groups.Letters() {
			rows, err := st.GroupStandings(letter)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := b.standings(st.Name+" "+letter, rows); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if pg := t.Format.PointsGroups; pg != nil {
		for _, letter := range pg.Letters {
			if err := b.points("Group "+letter, leaderboard.RankPoints(s.Points[letter])); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if t.Format.Finals != nil {
		if err := b.standings("Finals", t.FinalsStandings(s)); err != nil {
			f.Close()
			return nil, err
		}
	}

	if s.Board != nil {
		if err := b.bracket("Bracket", *s.Board); err != nil {
			f.Close()
			return nil, err
		}
	}

	if len(b.names) == 0 {
		// Nothing to export still yields a readable file.
		return f, nil
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, t *tournament.Tournament, s tournament.State) error {
	f, err := Workbook(t, s)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type builder struct {
	f     *excelize.File
	names []string
}

func (b *builder) sheet(title string, header []any) (string, error) {
	name := b.uniqueName(title)
	if _, err := b.f.NewSheet(name); err != nil {
		return "", fmt.Errorf("create sheet %q: %w", name, err)
	}
	b.names = append(b.names, name)
	if err := b.f.SetSheetRow(name, "A1", &header); err != nil {
		return "", fmt.Errorf("write header %q: %w", name, err)
	}
	return name, nil
}

func (b *builder) standings(title string, rows []leaderboard.AggregateRow) error {
	name, err := b.sheet(title, standingsHeader)
	if err != nil {
		return err
	}
	for i, r := range rows {
		values := []any{r.Rank, r.Team, r.WWCD, r.Placement, r.Kills, r.Total}
		if err := b.row(name, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) points(title string, rows []leaderboard.PointsRow) error {
	name, err := b.sheet(title, pointsHeader)
	if err != nil {
		return err
	}
	for i, r := range rows {
		values := []any{r.Rank, r.Team, r.GamesWon, r.GamesPlayed, r.Points}
		if err := b.row(name, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) bracket(title string, board bracket.Board) error {
	name, err := b.sheet(title, bracketHeader)
	if err != nil {
		return err
	}
	line := 2
	emit := func(round string, m bracket.Match) error {
		values := []any{round, m.ID, m.TeamA.String(), m.ScoreA, m.ScoreB, m.TeamB.String(), string(m.Status)}
		if err := b.row(name, line, values); err != nil {
			return err
		}
		line++
		return nil
	}

	for _, col := range board.Bracket.Columns {
		for _, m := range col.Matches {
			if err := emit(col.Title, m); err != nil {
				return err
			}
		}
	}
	if fs := board.Finals; fs != nil {
		for _, m := range fs.Semifinals {
			if err := emit("Semifinals", m); err != nil {
				return err
			}
		}
		if err := emit("Final", fs.Final); err != nil {
			return err
		}
		if err := emit("Third Place", fs.Placement.ThirdPlace); err != nil {
			return err
		}
		for _, m := range fs.Placement.FifthSixth {
			if err := emit("5th-6th", m); err != nil {
				return err
			}
		}
	}

	champion := []any{"Champion", "", board.Bracket.Winner.String()}
	return b.row(name, line+1, champion)
}

func (b *builder) row(sheet string, line int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	if err := b.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// uniqueName strips characters excel rejects in sheet names and suffixes
// repeats, since stage and group titles may collide after truncation.
func (b *builder) uniqueName(title string) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if clean == "" {
		clean = "Sheet"
	}
	clean = truncate(clean, maxSheetName)

	name := clean
	for n := 2; slices.ContainsFunc(b.names, func(s string) bool { return strings.EqualFold(s, name) }) || strings.EqualFold(name, "Sheet1"); n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(clean, maxSheetName-len(suffix)) + suffix
	}
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
