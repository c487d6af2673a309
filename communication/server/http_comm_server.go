package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"connect4/communication"
	"connect4/game"
	"connect4/gamemaster"
	"connect4/searcher/agent"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Server exposes a game master over HTTP.
type Server struct {
	gm     *gamemaster.GameMaster
	router chi.Router
	logger zerolog.Logger
}

func NewServer(gm *gamemaster.GameMaster) *Server {
	s := &Server{
		gm:     gm,
		logger: log.With().Str("component", "http").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Route("/games", func(r chi.Router) {
		r.Post("/start", s.handleStart)
		r.Get("/{id}", s.handleGet)
		r.Post("/{id}/move", s.handleMove)
		r.Post("/{id}/ai-move", s.handleAIMove)
		r.Delete("/{id}", s.handleDelete)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on srv until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, srv *http.Server) error {
	srv.Handler = s
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Msgf("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req communication.GameConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	snapshot, err := s.gm.Create(req.Config())
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, communication.NewGameState(snapshot))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.gm.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, communication.NewGameState(snapshot))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req communication.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	snapshot, err := s.gm.Move(chi.URLParam(r, "id"), req.Column)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, communication.NewGameState(snapshot))
}

func (s *Server) handleAIMove(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.gm.AIMove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, communication.NewGameState(snapshot))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.gm.Delete(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, communication.MessageResponse{Message: "Game session deleted"})
}

func (s *Server) writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gamemaster.ErrGameNotFound):
		writeError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, gamemaster.ErrGameFinished):
		writeError(w, http.StatusBadRequest, "Game is already finished")
	case errors.Is(err, gamemaster.ErrNotAIPlayer):
		writeError(w, http.StatusBadRequest, "Current player is not an AI agent")
	case errors.Is(err, game.ErrInvalidMove),
		errors.Is(err, game.ErrInvalidDimensions),
		errors.Is(err, agent.ErrUnknownKind),
		errors.Is(err, agent.ErrInvalidSpec):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, communication.ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
