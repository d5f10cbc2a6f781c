package bracket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPClient implements Client against the authority's HTTP API. Every call
// waits on the shared rate limiter first; the authority throttles hard and a
// burst of fan-out traffic must never turn into a burst of upstream calls.
type HTTPClient struct {
	baseURL string
	httpc   *http.Client
	tokens  *TokenPair
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewHTTPClient(baseURL string, tokens *TokenPair, limiter *rate.Limiter, log *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpc:   &http.Client{},
		tokens:  tokens,
		limiter: limiter,
		log:     log,
	}
}

func (c *HTTPClient) GetBracketInfo(ctx context.Context, tournamentID string) (*Graph, error) {
	var graph Graph
	url := fmt.Sprintf("%s/tournaments/%s.json", c.baseURL, tournamentID)
	if err := c.do(ctx, "get bracket info", http.MethodGet, url, nil, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

func (c *HTTPClient) GetMatchParticipants(ctx context.Context, tournamentID, matchID string) ([]Participant, error) {
	var participants []Participant
	url := fmt.Sprintf("%s/tournaments/%s/matches/%s/participants.json", c.baseURL, tournamentID, matchID)
	if err := c.do(ctx, "get match participants", http.MethodGet, url, nil, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (c *HTTPClient) SubmitMatchResult(ctx context.Context, tournamentID, matchID string, result Result) error {
	url := fmt.Sprintf("%s/tournaments/%s/matches/%s.json", c.baseURL, tournamentID, matchID)
	return c.do(ctx, "submit match result", http.MethodPut, url, result, nil)
}

func (c *HTTPClient) ChangeState(ctx context.Context, tournamentID string, from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, from, to)
	}
	url := fmt.Sprintf("%s/tournaments/%s/change_state.json", c.baseURL, tournamentID)
	body := struct {
		State State `json:"state"`
	}{State: to}
	err := c.do(ctx, "change state", http.MethodPut, url, body, nil)
	var re *RemoteError
	if errors.As(err, &re) && re.StatusCode == http.StatusUnprocessableEntity {
		// The authority knows transitions we don't model; trust its rejection.
		return fmt.Errorf("%w: rejected by authority", ErrInvalidStateTransition)
	}
	return err
}

// do issues one authenticated request. out, when non-nil, receives the
// decoded JSON response body.
func (c *HTTPClient) do(ctx context.Context, op, method, url string, body, out any) error {
	if !c.tokens.HasAccess() {
		return ErrNoAccessToken
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return &RemoteError{Op: op, Err: err}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.tokens.Access())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Token expired upstream; surface it the same as having none so the
		// caller re-authenticates before retrying.
		c.log.Warn("access token rejected by authority", zap.String("op", op))
		return ErrNoAccessToken
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &RemoteError{Op: op, StatusCode: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &RemoteError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}
