package views

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/AdamBeresnev/arena-leaderboard/internal/bracket"
	"github.com/AdamBeresnev/arena-leaderboard/internal/leaderboard"
	"github.com/AdamBeresnev/arena-leaderboard/internal/service"
	"github.com/AdamBeresnev/arena-leaderboard/internal/tournament"
	"github.com/AdamBeresnev/arena-leaderboard/internal/utils"
)

func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// writer collects the first write error so components read top to bottom.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) printf(format string, args ...any) {
	w.raw(fmt.Sprintf(format, args...))
}

func (w *writer) child(ctx context.Context, c templ.Component) {
	if w.err == nil {
		w.err = c.Render(ctx, w.w)
	}
}

func Page(title string, body ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		w.text(title)
		w.raw(`</title><link rel="stylesheet" href="/static/arena.css"></head><body><main><h1>`)
		w.text(title)
		w.raw(`</h1>`)
		for _, c := range body {
			w.child(ctx, c)
		}
		w.raw(`</main></body></html>`)
		return w.err
	})
}

func StandingsTable(title string, rows []leaderboard.AggregateRow) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<section class="standings"><h2>`)
		w.text(title)
		w.raw(`</h2><table><thead><tr><th>#</th><th>Team</th><th>WWCD</th><th>Place</th><th>Kills</th><th>Total</th></tr></thead><tbody>`)
		for _, r := range rows {
			w.printf(`<tr><td>%d</td><td>`, r.Rank)
			w.text(r.Team)
			w.printf(`</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td></tr>`, r.WWCD, r.Placement, r.Kills, r.Total)
		}
		w.raw(`</tbody></table></section>`)
		return w.err
	})
}

func PointsTable(letter string, rows []leaderboard.PointsRow) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<section class="points"><h2>Group `)
		w.text(letter)
		w.raw(`</h2><table><thead><tr><th>#</th><th>Team</th><th>Played</th><th>Won</th><th>Points</th></tr></thead><tbody>`)
		for _, r := range rows {
			w.printf(`<tr><td>%d</td><td>`, r.Rank)
			w.text(r.Team)
			w.printf(`</td><td>%d</td><td>%d</td><td>%d</td></tr>`, r.GamesPlayed, r.GamesWon, r.Points)
		}
		w.raw(`</tbody></table></section>`)
		return w.err
	})
}

func BracketView(data BracketData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<section class="bracket">`)
		for _, group := range [][]BracketColumn{data.Upper, data.Lower, data.Final} {
			if len(group) == 0 {
				continue
			}
			w.raw(`<div class="bracket-side">`)
			for _, col := range group {
				w.printf(`<div class="bracket-column" data-column="%d"><h3>`, col.Column)
				w.text(col.Title)
				w.raw(`</h3>`)
				for i, m := range col.Matches {
					w.printf(`<div class="match %s" data-ref="bracket/%d/%d">`, m.Status, col.Column, i)
					matchRow(w, m.TeamA.String(), m.ScoreA, m.Decided() && m.ScoreA > m.ScoreB)
					matchRow(w, m.TeamB.String(), m.ScoreB, m.Decided() && m.ScoreB > m.ScoreA)
					matchTime(w, m)
					w.raw(`</div>`)
				}
				w.raw(`</div>`)
			}
			w.raw(`</div>`)
		}
		for _, round := range data.Finals {
			w.printf(`<div class="finals-round" data-column="%d"><h3>`, round.Column)
			w.text(round.Title)
			w.raw(`</h3>`)
			for i, m := range round.Matches {
				w.printf(`<div class="match %s" data-ref="finals/%d/%d">`, m.Status, round.Column, i)
				matchRow(w, m.TeamA.String(), m.ScoreA, m.Decided() && m.ScoreA > m.ScoreB)
				matchRow(w, m.TeamB.String(), m.ScoreB, m.Decided() && m.ScoreB > m.ScoreA)
				matchTime(w, m)
				w.raw(`</div>`)
			}
			w.raw(`</div>`)
		}
		if data.Champion.Resolved() {
			w.raw(`<p class="champion">Champion: `)
			w.text(data.Champion.Name())
			w.raw(`</p>`)
		}
		w.raw(`</section>`)
		return w.err
	})
}

func matchTime(w *writer, m bracket.Match) {
	if t := utils.OrZero(m.Time); t != "" {
		w.raw(`<time>`)
		w.text(t)
		w.raw(`</time>`)
	}
}

func matchRow(w *writer, team string, score int, won bool) {
	class := "team"
	if won {
		class += " winner"
	}
	w.printf(`<div class="%s"><span>`, class)
	w.text(team)
	w.printf(`</span><b>%d</b></div>`, score)
}

func savedNote(v *service.StateView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		switch {
		case !v.Persistence:
			w.raw(`<p class="note">Persistence is not configured; changes live in memory only.</p>`)
		case v.LastSavedAt != nil:
			w.raw(`<p class="note">Last saved `)
			w.text(v.LastSavedAt.Format(time.RFC1123))
			w.raw(`</p>`)
		}
		if v.Dirty {
			w.raw(`<p class="note dirty">Unsaved changes</p>`)
		}
		return w.err
	})
}

// LeaderboardPage renders every stage, the points groups, finals and bracket
// the format has, in that order.
func LeaderboardPage(t *tournament.Tournament, v *service.StateView) templ.Component {
	parts := []templ.Component{savedNote(v)}
	s := v.State

	for _, st := range s.Stages {
		parts = append(parts, StandingsTable(st.Name+" overall", st.Overall()))
		for _, letter := range st.Groups.Letters() {
			rows, err := st.GroupStandings(letter)
			if err == nil {
				parts = append(parts, StandingsTable(st.Name+" group "+letter, rows))
			}
		}
	}
	if pg := t.Format.PointsGroups; pg != nil {
		for _, letter := range pg.Letters {
			if rows, err := t.PointsStandings(s, letter); err == nil {
				parts = append(parts, PointsTable(letter, rows))
			}
		}
	}
	if t.Format.Finals != nil {
		parts = append(parts, StandingsTable("Finals", t.FinalsStandings(s)))
	}
	if t.HasBracket() && s.Board != nil {
		parts = append(parts, BracketView(PrepareBracketData(t.Propagator().Wiring(), *s.Board)))
	}
	return Page(t.Format.Name, parts...)
}
