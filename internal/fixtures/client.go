package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.sportmonks.com/v3/football"

// startingAtLayout is the provider's timestamp format.
const startingAtLayout = "2006-01-02 15:04:05"

// ErrFixtureNotFound is returned when the provider knows no such fixture.
var ErrFixtureNotFound = errors.New("fixture not found")

// Score is one score entry of a fixture. Only entries tagged CURRENT count
// toward the final result.
type Score struct {
	Description string `json:"description"`
	Participant string `json:"participant"`
	Goals       int    `json:"goals"`
}

// Fixture is the provider's view of one match.
type Fixture struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	StartingAt *time.Time `json:"starting_at,omitempty"`
	Scores     []Score    `json:"scores,omitempty"`

	// Source records whether the data came from the cache or a live fetch.
	Source string `json:"-"`
}

// HomeAway splits the fixture name on the literal " vs " separator.
func (f *Fixture) HomeAway() (home, away string, err error) {
	parts := strings.SplitN(f.Name, " vs ", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("fixture name %q has no home/away split", f.Name)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// CurrentScore sums the CURRENT-tagged goals per side.
func (f *Fixture) CurrentScore() (home, away int) {
	for _, s := range f.Scores {
		if s.Description != "CURRENT" {
			continue
		}
		switch s.Participant {
		case "home":
			home = s.Goals
		case "away":
			away = s.Goals
		}
	}
	return home, away
}

// Winner returns the name of the side with the strictly higher CURRENT score,
// or "" for a draw.
func (f *Fixture) Winner() (string, error) {
	home, away, err := f.HomeAway()
	if err != nil {
		return "", err
	}
	homeScore, awayScore := f.CurrentScore()
	switch {
	case homeScore > awayScore:
		return home, nil
	case awayScore > homeScore:
		return away, nil
	default:
		return "", nil
	}
}

// Client fetches fixtures from the external football data provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
}

func NewClient(baseURL, apiToken string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:  baseURL,
		apiToken: apiToken,
	}
}

// wire types for the provider's response envelope

type fixtureEnvelope struct {
	Data *fixturePayload `json:"data"`
}

type fixturePayload struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	StartingAt string       `json:"starting_at"`
	Scores     []scoreEntry `json:"scores"`
}

type scoreEntry struct {
	Description string `json:"description"`
	Score       struct {
		Participant string `json:"participant"`
		Goals       int    `json:"goals"`
	} `json:"score"`
}

// GetFixture fetches one fixture including its scores.
func (c *Client) GetFixture(ctx context.Context, fixtureID int64) (*Fixture, error) {
	url := fmt.Sprintf("%s/fixtures/%d?api_token=%s&include=scores", c.baseURL, fixtureID, c.apiToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixture %d: %w", fixtureID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrFixtureNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("football API error: %d - %s", resp.StatusCode, string(body))
	}

	var envelope fixtureEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode fixture response: %w", err)
	}
	if envelope.Data == nil {
		return nil, ErrFixtureNotFound
	}

	return envelope.Data.toFixture(), nil
}

func (p *fixturePayload) toFixture() *Fixture {
	fixture := &Fixture{
		ID:     p.ID,
		Name:   p.Name,
		Source: "live",
	}
	if t, err := time.Parse(startingAtLayout, p.StartingAt); err == nil {
		fixture.StartingAt = &t
	}
	for _, s := range p.Scores {
		fixture.Scores = append(fixture.Scores, Score{
			Description: s.Description,
			Participant: s.Score.Participant,
			Goals:       s.Score.Goals,
		})
	}
	return fixture
}

// GetFixturesBetween fetches the raw fixture list for a date range. The body
// is passed through untouched; the browse endpoint does not interpret it.
func (c *Client) GetFixturesBetween(ctx context.Context, dateFrom, dateTo string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/fixtures/between/%s/%s?include=scores&include=league",
		c.baseURL, strings.TrimSpace(dateFrom), strings.TrimSpace(dateTo))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixtures: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("football API error: %d - %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures response: %w", err)
	}
	return envelope.Data, nil
}
