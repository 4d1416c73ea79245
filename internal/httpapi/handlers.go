package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jtaylor-dev/avalon-backend/internal/game"
	"github.com/jtaylor-dev/avalon-backend/internal/session"
	"github.com/jtaylor-dev/avalon-backend/internal/timer"
	"go.uber.org/zap"
)

func Join(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			http.Error(w, "missing name", http.StatusBadRequest)
			return
		}

		err := s.Apply(r.Context(), game.Command{Type: game.CmdJoin, Name: req.Name})
		switch {
		case errors.Is(err, game.ErrGameInProgress):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}
}

func Quit(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			http.Error(w, "missing name", http.StatusBadRequest)
			return
		}

		if err := s.Apply(r.Context(), game.Command{Type: game.CmdQuit, Name: req.Name}); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func Start(s *session.Session, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			KnowledgeTable game.KnowledgeTable `json:"knowledgeTable"`
			Roles          []string            `json:"roles"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.KnowledgeTable == nil {
			http.Error(w, "missing knowledge table", http.StatusBadRequest)
			return
		}

		err := s.Apply(r.Context(), game.Command{
			Type:  game.CmdStartGame,
			Table: req.KnowledgeTable,
			Roles: req.Roles,
		})
		switch {
		case errors.Is(err, game.ErrGameInProgress):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Info("game started", zap.Int("players", len(req.Roles)))
			w.WriteHeader(http.StatusOK)
		}
	}
}

func End(s *session.Session, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Apply(r.Context(), game.Command{Type: game.CmdEndGame}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Info("game ended")
		w.WriteHeader(http.StatusOK)
	}
}

func Role(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "missing name", http.StatusBadRequest)
			return
		}

		st, err := s.State(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		view, err := game.RoleInfo(st, name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, view)
	}
}

func List(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := s.State(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, game.Names(st))
	}
}

func Active(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := s.State(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, game.Active(st))
	}
}

func StartVote(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Names         []string `json:"names"`
			FailsRequired int      `json:"failsRequired"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		err := s.Apply(r.Context(), game.Command{
			Type:          game.CmdStartVote,
			Voters:        req.Names,
			FailsRequired: req.FailsRequired,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func CurrentVote(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := s.State(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, game.CurrentVote(st))
	}
}

func Vote(s *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
			Vote *bool  `json:"vote"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Vote == nil {
			http.Error(w, "missing name or vote", http.StatusBadRequest)
			return
		}

		err := s.Apply(r.Context(), game.Command{Type: game.CmdCastVote, Name: req.Name, Vote: *req.Vote})
		switch {
		case errors.Is(err, game.ErrInvalidVote):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case err != nil:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}
}

func StartTimer(c *timer.Countdown) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Time int `json:"time"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := c.Start(req.Time); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func ToggleTimer(c *timer.Countdown) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c.Toggle()
		w.WriteHeader(http.StatusOK)
	}
}

func GetTime(c *timer.Countdown) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, c.Current())
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
