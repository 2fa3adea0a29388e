package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"duel/arena"
	"duel/communication"
	"duel/game"
	"duel/meta"
	"duel/searcher"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Server answers decision requests with one configured agent. Every
// request gets a fresh searcher, so requests never share search state.
type Server struct {
	agent     arena.AgentConfig
	maxBudget time.Duration
	requests  atomic.Int64
}

func NewServer(agent arena.AgentConfig, maxBudget time.Duration) *Server {
	return &Server{
		agent:     agent,
		maxBudget: maxBudget,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"strategy": s.agent.Strategy})
	})
	r.With(middleware.RequestSize(meta.MAX_REQUEST_BYTES)).Post("/decide", s.handleDecide)
	return r
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("agent %s listening on %s", s.agent.Strategy, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down agent")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req communication.DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("payload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	budget, err := time.ParseDuration(req.Budget)
	if err != nil || budget <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid budget %q", req.Budget))
		return
	}
	budget = min(budget, s.maxBudget)

	switch req.Position.Game {
	case communication.Nim:
		decide[game.NimMove](s, w, r, req.Position, budget)
	case communication.TicTacToe:
		decide[game.Cell](s, w, r, req.Position, budget)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown game %q", req.Position.Game))
	}
}

func decide[A comparable](s *Server, w http.ResponseWriter, r *http.Request, position communication.Position, budget time.Duration) {
	state, err := communication.Decode[A](position)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	src := arena.NewSearcher[A](s.agent, int(s.requests.Add(1)))
	action, err := arena.Decide(r.Context(), src, state, budget)
	switch {
	case errors.Is(err, searcher.ErrNoLegalActions):
		writeError(w, http.StatusUnprocessableEntity, "no legal actions")
		return
	case err != nil:
		log.Error().Err(err).Msg("failed to decide")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data, err := json.Marshal(action)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode action")
		return
	}
	writeJSON(w, http.StatusOK, communication.DecideResponse{Action: data, Metrics: src.Metrics()})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().Msgf("%s %s %d in %v [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, communication.ErrorResponse{Error: message})
}
