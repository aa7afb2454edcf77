package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/AdamBeresnev/arena-leaderboard/internal/bracket"
	"github.com/AdamBeresnev/arena-leaderboard/internal/config"
	"github.com/AdamBeresnev/arena-leaderboard/internal/httputil"
	"github.com/AdamBeresnev/arena-leaderboard/internal/middleware"
	"github.com/AdamBeresnev/arena-leaderboard/internal/service"
	"github.com/AdamBeresnev/arena-leaderboard/internal/snapshot"
	"github.com/AdamBeresnev/arena-leaderboard/internal/utils"
	"github.com/AdamBeresnev/arena-leaderboard/views"
)

type fieldEdit struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type scoreEdit struct {
	ScoreA any `json:"scoreA"`
	ScoreB any `json:"scoreB"`
}

func newRouter(cfg *config.Config, svc *service.LeaderboardService) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowOrigins))
	if cfg.RateLimitEnabled {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/formats", func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteJSON(w, http.StatusOK, svc.Formats())
		})

		r.Get("/persistence", func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteJSON(w, http.StatusOK, map[string]bool{"configured": svc.PersistenceConfigured()})
		})

		r.Route("/events/{eventID}/games/{gameID}", func(r chi.Router) {
			r.Get("/state", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				view, err := svc.State(eventID, gameID)
				respond(w, "Failed to get state", view, err)
			})

			r.Post("/load", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				view, err := svc.Load(r.Context(), eventID, gameID)
				respond(w, "Failed to load snapshot", view, err)
			})

			r.Post("/save", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				view, err := svc.Save(r.Context(), eventID, gameID)
				respond(w, "Failed to save snapshot", view, err)
			})

			r.Post("/leave", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				if err := svc.Leave(eventID, gameID); err != nil {
					writeServiceError(w, "Failed to leave", err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})

			r.Get("/stages/{stage}/standings", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				rows, err := svc.Standings(eventID, gameID, chi.URLParam(r, "stage"), r.URL.Query().Get("group"))
				respond(w, "Failed to get standings", rows, err)
			})

			r.Get("/stages/{stage}/qualified", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				qs, err := svc.Qualified(eventID, gameID, chi.URLParam(r, "stage"))
				respond(w, "Failed to get qualifiers", qs, err)
			})

			r.Put("/stages/{stage}/matches/{matchKey}/rows/{idx}", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				idx, ok := intParam(w, r, "idx")
				if !ok {
					return
				}
				var body fieldEdit
				if err := httputil.DecodeJSON(w, r, &body); err != nil {
					httputil.BadRequest(w, "Invalid JSON body", err)
					return
				}
				view, err := svc.EditStat(eventID, gameID, chi.URLParam(r, "stage"), chi.URLParam(r, "matchKey"), idx, body.Field, body.Value)
				respond(w, "Failed to edit stat", view, err)
			})

			r.Put("/stages/{stage}/teams/{idx}", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				idx, ok := intParam(w, r, "idx")
				if !ok {
					return
				}
				var body struct {
					Name string `json:"name"`
				}
				if err := httputil.DecodeJSON(w, r, &body); err != nil {
					httputil.BadRequest(w, "Invalid JSON body", err)
					return
				}
				view, err := svc.RenameTeam(eventID, gameID, chi.URLParam(r, "stage"), idx, body.Name)
				respond(w, "Failed to rename team", view, err)
			})

			r.Post("/reseed/{target}", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				view, err := svc.Reseed(eventID, gameID, chi.URLParam(r, "target"))
				respond(w, "Failed to reseed", view, err)
			})

			r.Put("/bracket/{section}/{column}/{index}", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				ref, ok := matchRef(w, r)
				if !ok {
					return
				}
				var body scoreEdit
				if err := httputil.DecodeJSON(w, r, &body); err != nil {
					httputil.BadRequest(w, "Invalid JSON body", err)
					return
				}
				view, err := svc.SetScore(eventID, gameID, ref, utils.Coerce(body.ScoreA), utils.Coerce(body.ScoreB))
				respond(w, "Failed to set score", view, err)
			})

			r.Get("/groups/{group}", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				rows, err := svc.PointsStandings(eventID, gameID, chi.URLParam(r, "group"))
				respond(w, "Failed to get points standings", rows, err)
			})

			r.Put("/groups/{group}/rows/{idx}", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				idx, ok := intParam(w, r, "idx")
				if !ok {
					return
				}
				var body fieldEdit
				if err := httputil.DecodeJSON(w, r, &body); err != nil {
					httputil.BadRequest(w, "Invalid JSON body", err)
					return
				}
				view, err := svc.SetPoints(eventID, gameID, chi.URLParam(r, "group"), idx, body.Field, body.Value)
				respond(w, "Failed to edit points", view, err)
			})

			r.Get("/finals", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				rows, err := svc.FinalsStandings(eventID, gameID)
				respond(w, "Failed to get finals standings", rows, err)
			})

			r.Put("/finals/{origIdx}", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				idx, ok := intParam(w, r, "origIdx")
				if !ok {
					return
				}
				var body fieldEdit
				if err := httputil.DecodeJSON(w, r, &body); err != nil {
					httputil.BadRequest(w, "Invalid JSON body", err)
					return
				}
				view, err := svc.SetFinalsStat(eventID, gameID, idx, body.Field, body.Value)
				respond(w, "Failed to edit finals", view, err)
			})

			r.Put("/teams", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				var body struct {
					Teams []string `json:"teams"`
				}
				if err := httputil.DecodeJSON(w, r, &body); err != nil {
					httputil.BadRequest(w, "Invalid JSON body", err)
					return
				}
				view, err := svc.SetTeams(eventID, gameID, body.Teams)
				respond(w, "Failed to set teams", view, err)
			})

			r.Get("/view", func(w http.ResponseWriter, r *http.Request) {
				eventID, gameID := scopeParams(r)
				view, err := svc.State(eventID, gameID)
				if err != nil {
					writeServiceError(w, "Failed to get state", err)
					return
				}
				sess, err := svc.Session(eventID, gameID)
				if err != nil {
					writeServiceError(w, "Failed to get session", err)
					return
				}
				if err := views.Render(w, r, views.LeaderboardPage(sess.Tournament(), view)); err != nil {
					httputil.InternalServerError(w, "Failed to render view", err)
				}
			})
		})
	})

	return r
}

func scopeParams(r *http.Request) (eventID, gameID string) {
	return chi.URLParam(r, "eventID"), chi.URLParam(r, "gameID")
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		httputil.BadRequest(w, "Invalid "+name, err)
		return 0, false
	}
	return v, true
}

func matchRef(w http.ResponseWriter, r *http.Request) (bracket.MatchRef, bool) {
	section := bracket.Section(chi.URLParam(r, "section"))
	if section != bracket.SectionBracket && section != bracket.SectionFinals {
		httputil.BadRequest(w, "Section must be bracket or finals", nil)
		return bracket.MatchRef{}, false
	}
	column, ok := intParam(w, r, "column")
	if !ok {
		return bracket.MatchRef{}, false
	}
	index, ok := intParam(w, r, "index")
	if !ok {
		return bracket.MatchRef{}, false
	}
	return bracket.MatchRef{Section: section, Column: column, Index: index}, true
}

func respond(w http.ResponseWriter, msg string, v any, err error) {
	if err != nil {
		writeServiceError(w, msg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func writeServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		httputil.NotFound(w, msg, err)
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, snapshot.ErrMissingScope):
		httputil.BadRequest(w, msg, err)
	case errors.Is(err, snapshot.ErrPersistenceNotConfigured):
		httputil.ServiceUnavailable(w, msg, err)
	case errors.Is(err, snapshot.ErrSuperseded):
		httputil.Conflict(w, msg, err)
	default:
		httputil.InternalServerError(w, msg, err)
	}
}
