package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds one remote duel request.
const DefaultTimeout = 5 * time.Second

// Response is the remote service's envelope.
type Response struct {
	Meta    Meta   `json:"meta"`
	Results Result `json:"results"`
}

type Meta struct {
	Track   string   `json:"track"`
	Drivers []string `json:"drivers"`
}

// Remote queries a strategy service over HTTP.
type Remote struct {
	BaseURL string
	Client  *http.Client
}

func NewRemote(baseURL string) *Remote {
	return &Remote{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: DefaultTimeout},
	}
}

func (r Request) query() url.Values {
	q := url.Values{}
	q.Set("d1", r.Driver1)
	q.Set("d2", r.Driver2)
	q.Set("d1_pit", strconv.Itoa(r.Pit1))
	q.Set("d2_pit", strconv.Itoa(r.Pit2))
	q.Set("track", r.Track)
	q.Set("d1_tire", string(r.Tire1))
	q.Set("d2_tire", string(r.Tire2))
	return q
}

func (r *Remote) Duel(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	u := r.BaseURL + "/duel?" + req.query().Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, fmt.Errorf("strategy: build request: %w", err)
	}

	resp, err := r.Client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("strategy: remote duel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("strategy: remote duel: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("strategy: decode response: %w", err)
	}
	return out.Results, nil
}
