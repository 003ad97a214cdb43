// Package model defines the persisted record shapes for the host
// service: the structured records a client receives over the wire and
// a postgres.GameRepository/RoundRepository durably stores. These are
// distinct from pkg/territory's in-memory GameState/RoundRecord: the
// core never imports this package, and never sees a *sql.DB.
package model

import (
	"encoding/json"
	"time"
)

// User represents a registered player identity.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Game represents one territory match lobby/match.
type Game struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	CreatorID     string     `json:"creator_id"`
	Status        string     `json:"status"` // waiting, active, finished
	Verdict       string     `json:"verdict,omitempty"`
	VerdictSeats  []int      `json:"verdict_seats,omitempty"`
	NumPlayers    int        `json:"num_players"`
	MapSize       int        `json:"map_size"`
	MaxRounds     int        `json:"max_rounds"`
	RoundDuration string     `json:"round_duration"` // advisory metadata only; no core logic consumes it
	Seed          int64      `json:"seed"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Players       []Seat     `json:"players,omitempty"`
}

// Seat represents a player's membership in a game, keyed by their
// zero-based seat index (0 <-> PlayerId 'a').
type Seat struct {
	GameID   string    `json:"game_id"`
	UserID   string    `json:"user_id"`
	SeatIdx  int       `json:"seat_idx"`
	JoinedAt time.Time `json:"joined_at"`
}

// Round represents one round record: the board before orders
// executed, the declarations and orders submitted for it, and (once
// resolved) the board after.
type Round struct {
	ID           string          `json:"id"`
	GameID       string          `json:"game_id"`
	RoundNumber  int             `json:"round_number"`
	BoardBefore  string          `json:"board_before"`
	BoardAfter   string          `json:"board_after,omitempty"`
	Declarations json.RawMessage `json:"declarations,omitempty"` // []string of declaration text, by seat
	Orders       json.RawMessage `json:"orders,omitempty"`       // []string of order lines, by seat
	Deadline     time.Time       `json:"deadline"`
	ResolvedAt   *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
