package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseRoundDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"24h", 24 * time.Hour},
		{"12h", 12 * time.Hour},
		{"1h30m", 90 * time.Minute},
		{"", 24 * time.Hour},
		{"24 hours", 24 * time.Hour},
		{"24:00:00", 24 * time.Hour},
		{"bogus", 24 * time.Hour},
	}
	for _, tt := range tests {
		got := parseRoundDuration(tt.input)
		if got != tt.want {
			t.Errorf("parseRoundDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func newTestGameService() (*GameService, *mockGameRepo, *mockRoundRepo, *mockCache) {
	gameRepo := newMockGameRepo()
	roundRepo := newMockRoundRepo()
	cache := newMockCache()
	return NewGameService(gameRepo, roundRepo, cache), gameRepo, roundRepo, cache
}

func TestCreateGame(t *testing.T) {
	svc, gameRepo, _, _ := newTestGameService()

	game, err := svc.CreateGame(context.Background(), "Test Game", "user-1", "", 4, 5, 15, 0)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if game.Name != "Test Game" {
		t.Errorf("expected name 'Test Game', got %s", game.Name)
	}
	if game.Status != "waiting" {
		t.Errorf("expected status 'waiting', got %s", game.Status)
	}
	if game.RoundDuration != "24 hours" {
		t.Errorf("expected default round duration '24 hours', got %s", game.RoundDuration)
	}
	if game.Seed == 0 {
		t.Error("expected a non-zero seed to be assigned")
	}

	seats := gameRepo.seats[game.ID]
	if len(seats) != 1 {
		t.Fatalf("expected creator to auto-join, got %d seats", len(seats))
	}
	if seats[0].UserID != "user-1" || seats[0].SeatIdx != 0 {
		t.Errorf("expected creator in seat 0, got %+v", seats[0])
	}
}

func TestJoinGameAssignsLowestSeat(t *testing.T) {
	svc, _, _, _ := newTestGameService()

	game, _ := svc.CreateGame(context.Background(), "Test", "user-1", "", 3, 5, 15, 0)

	seatIdx, err := svc.JoinGame(context.Background(), game.ID, "user-2")
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if seatIdx != 1 {
		t.Errorf("expected seat 1, got %d", seatIdx)
	}
}

func TestJoinGameNotFound(t *testing.T) {
	svc, _, _, _ := newTestGameService()

	_, err := svc.JoinGame(context.Background(), "nonexistent", "user-1")
	if !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}
}

func TestJoinGameAlreadyJoined(t *testing.T) {
	svc, _, _, _ := newTestGameService()

	game, _ := svc.CreateGame(context.Background(), "Test", "user-1", "", 3, 5, 15, 0)

	_, err := svc.JoinGame(context.Background(), game.ID, "user-1")
	if !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("expected ErrAlreadyJoined, got %v", err)
	}
}

func TestJoinGameFull(t *testing.T) {
	svc, _, _, _ := newTestGameService()

	game, _ := svc.CreateGame(context.Background(), "Test", "user-1", "", 2, 5, 15, 0)
	if _, err := svc.JoinGame(context.Background(), game.ID, "user-2"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}

	_, err := svc.JoinGame(context.Background(), game.ID, "user-3")
	if !errors.Is(err, ErrGameFull) {
		t.Errorf("expected ErrGameFull, got %v", err)
	}
}

func TestStartGameRequiresFullLobby(t *testing.T) {
	svc, _, _, _ := newTestGameService()

	game, _ := svc.CreateGame(context.Background(), "Test", "user-1", "", 3, 5, 15, 0)

	_, err := svc.StartGame(context.Background(), game.ID, "user-1")
	if !errors.Is(err, ErrNotEnough) {
		t.Errorf("expected ErrNotEnough, got %v", err)
	}
}

func TestStartGameOnlyCreator(t *testing.T) {
	svc, _, _, _ := newTestGameService()

	game, _ := svc.CreateGame(context.Background(), "Test", "user-1", "", 2, 5, 15, 0)
	if _, err := svc.JoinGame(context.Background(), game.ID, "user-2"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}

	_, err := svc.StartGame(context.Background(), game.ID, "user-2")
	if !errors.Is(err, ErrNotCreator) {
		t.Errorf("expected ErrNotCreator, got %v", err)
	}
}

func TestStartGameCreatesFirstRound(t *testing.T) {
	svc, _, roundRepo, cache := newTestGameService()

	game, _ := svc.CreateGame(context.Background(), "Test", "user-1", "", 3, 5, 15, 42)
	if _, err := svc.JoinGame(context.Background(), game.ID, "user-2"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if _, err := svc.JoinGame(context.Background(), game.ID, "user-3"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}

	started, err := svc.StartGame(context.Background(), game.ID, "user-1")
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if started.Status != "active" {
		t.Errorf("expected status 'active', got %s", started.Status)
	}

	rounds := roundRepo.byGame[game.ID]
	if len(rounds) != 1 {
		t.Fatalf("expected 1 round created, got %d", len(rounds))
	}
	if cache.states[game.ID] == nil {
		t.Error("expected game state to be cached")
	}
	if _, ok := cache.timers[game.ID]; !ok {
		t.Error("expected round timer to be set")
	}
}

func TestDeleteGameOnlyCreatorWhileWaiting(t *testing.T) {
	svc, _, _, _ := newTestGameService()

	game, _ := svc.CreateGame(context.Background(), "Test", "user-1", "", 2, 5, 15, 0)

	if err := svc.DeleteGame(context.Background(), game.ID, "user-2"); !errors.Is(err, ErrNotCreator) {
		t.Errorf("expected ErrNotCreator, got %v", err)
	}
	if err := svc.DeleteGame(context.Background(), game.ID, "user-1"); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}
	if _, err := svc.GetGame(context.Background(), game.ID); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected game to be gone, got %v", err)
	}
}
