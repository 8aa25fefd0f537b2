package fixtures

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWinner(t *testing.T) {
	tests := []struct {
		name    string
		fixture Fixture
		want    string
		wantErr bool
	}{
		{
			name: "home win",
			fixture: Fixture{
				Name: "Arsenal vs Chelsea",
				Scores: []Score{
					{Description: "CURRENT", Participant: "home", Goals: 2},
					{Description: "CURRENT", Participant: "away", Goals: 1},
				},
			},
			want: "Arsenal",
		},
		{
			name: "away win",
			fixture: Fixture{
				Name: "Arsenal vs Chelsea",
				Scores: []Score{
					{Description: "CURRENT", Participant: "home", Goals: 0},
					{Description: "CURRENT", Participant: "away", Goals: 3},
				},
			},
			want: "Chelsea",
		},
		{
			name: "draw",
			fixture: Fixture{
				Name: "Arsenal vs Chelsea",
				Scores: []Score{
					{Description: "CURRENT", Participant: "home", Goals: 1},
					{Description: "CURRENT", Participant: "away", Goals: 1},
				},
			},
			want: "",
		},
		{
			name: "half time scores ignored",
			fixture: Fixture{
				Name: "Arsenal vs Chelsea",
				Scores: []Score{
					{Description: "1ST_HALF", Participant: "home", Goals: 5},
					{Description: "CURRENT", Participant: "home", Goals: 0},
					{Description: "CURRENT", Participant: "away", Goals: 1},
				},
			},
			want: "Chelsea",
		},
		{
			name:    "unsplittable name",
			fixture: Fixture{Name: "Arsenal - Chelsea"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fixture.Winner()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Winner failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected winner %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGetFixture(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fixtures/19135" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"id": 19135,
				"name": "Arsenal vs Chelsea",
				"starting_at": "2025-03-01 18:00:00",
				"scores": [
					{"description": "CURRENT", "score": {"participant": "home", "goals": 2}},
					{"description": "CURRENT", "score": {"participant": "away", "goals": 1}}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-token")

	fixture, err := client.GetFixture(context.Background(), 19135)
	if err != nil {
		t.Fatalf("GetFixture failed: %v", err)
	}

	if fixture.Name != "Arsenal vs Chelsea" {
		t.Errorf("unexpected name %q", fixture.Name)
	}
	want := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	if fixture.StartingAt == nil || !fixture.StartingAt.Equal(want) {
		t.Errorf("expected starting at %v, got %v", want, fixture.StartingAt)
	}
	home, away := fixture.CurrentScore()
	if home != 2 || away != 1 {
		t.Errorf("expected score 2-1, got %d-%d", home, away)
	}

	_, err = client.GetFixture(context.Background(), 99999)
	if !errors.Is(err, ErrFixtureNotFound) {
		t.Errorf("expected ErrFixtureNotFound, got %v", err)
	}
}
