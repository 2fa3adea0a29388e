package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"duel/communication"
	"duel/game"
	"duel/meta"
	"duel/searcher"

	"golang.org/x/exp/rand"
)

// Searcher delegates the search to a remote agent. It reports a random
// legal action first, then the remote agent's decision once it arrives.
type Searcher[A comparable] struct {
	serverURL string
	client    *http.Client

	mu      sync.Mutex
	metrics searcher.SearchMetrics
}

func NewSearcher[A comparable](serverURL string) *Searcher[A] {
	return &Searcher[A]{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		client:    &http.Client{},
	}
}

func (s *Searcher[A]) Search(ctx context.Context, state game.State[A], report searcher.Reporter[A]) error {
	if report == nil {
		return searcher.ErrNilReporter
	}
	// Metrics belong to the latest call, even one abandoned before an answer
	s.mu.Lock()
	s.metrics = searcher.SearchMetrics{}
	s.mu.Unlock()

	actions := state.Actions()
	if len(actions) == 0 {
		return searcher.ErrNoLegalActions
	}
	report(actions[rand.Intn(len(actions))])

	// Leave room for the round trip within the caller's deadline
	budget := meta.BUDGET
	if deadline, ok := ctx.Deadline(); ok {
		budget = time.Until(deadline) - meta.NETWORK_MARGIN
	}
	if budget <= 0 {
		return nil
	}

	position, err := communication.Encode(state)
	if err != nil {
		return err
	}
	response, err := s.requestDecision(ctx, communication.DecideRequest{Position: position, Budget: budget.String()})
	if err != nil {
		return err
	}

	var action A
	if err := json.Unmarshal(response.Action, &action); err != nil {
		return fmt.Errorf("failed to decode action: %w", err)
	}
	s.mu.Lock()
	s.metrics = response.Metrics
	s.mu.Unlock()

	report(action)
	return nil
}

// requestDecision posts the position to /decide on the agent side
func (s *Searcher[A]) requestDecision(ctx context.Context, payload communication.DecideRequest) (*communication.DecideResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+"/decide", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach agent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		problem := communication.ErrorResponse{}
		if json.Unmarshal(out, &problem) == nil && problem.Error != "" {
			return nil, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, problem.Error)
		}
		return nil, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, out)
	}

	response := &communication.DecideResponse{}
	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return response, nil
}

// Metrics returns what the remote agent reported for the latest decision.
func (s *Searcher[A]) Metrics() searcher.SearchMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}
