package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/akngs/territory/internal/model"
)

// Sentinel errors JoinGame returns, wrapped, so callers can branch with
// errors.Is without parsing message text.
var (
	ErrGameNotWaiting = errors.New("game is not waiting for players")
	ErrSeatsFull      = errors.New("no open seats remain")
)

// UserRepository defines user data operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// GameRepository defines game and seat data operations.
type GameRepository interface {
	Create(ctx context.Context, name, creatorID, roundDuration string, numPlayers, mapSize, maxRounds int, seed int64) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListOpen(ctx context.Context) ([]model.Game, error)
	ListByUser(ctx context.Context, userID string) ([]model.Game, error)
	ListFinished(ctx context.Context) ([]model.Game, error)
	ListActive(ctx context.Context) ([]model.Game, error)
	// JoinGame assigns the caller the lowest unclaimed seat index and
	// returns it. Returns an error if the game is not waiting or every
	// seat is already taken.
	JoinGame(ctx context.Context, gameID, userID string) (seatIdx int, err error)
	ListSeats(ctx context.Context, gameID string) ([]model.Seat, error)
	SeatCount(ctx context.Context, gameID string) (int, error)
	Start(ctx context.Context, gameID string) error
	SetFinished(ctx context.Context, gameID, verdict string, verdictSeats []int) error
	Delete(ctx context.Context, gameID string) error
}

// RoundRepository defines round, declaration, and order data operations.
type RoundRepository interface {
	CreateRound(ctx context.Context, gameID string, roundNumber int, boardBefore string, deadline time.Time) (*model.Round, error)
	CurrentRound(ctx context.Context, gameID string) (*model.Round, error)
	ListRounds(ctx context.Context, gameID string) ([]model.Round, error)
	SaveDeclarations(ctx context.Context, roundID string, declarations json.RawMessage) error
	SaveOrders(ctx context.Context, roundID string, orders json.RawMessage) error
	ResolveRound(ctx context.Context, roundID string, boardAfter string) error
}

// GameCache defines live round-collection state (Redis). Everything
// here is scoped to the round currently being collected; durable
// history lives in RoundRepository once a round resolves.
type GameCache interface {
	SetGameState(ctx context.Context, gameID string, state json.RawMessage) error
	GetGameState(ctx context.Context, gameID string) (json.RawMessage, error)
	SetDeclaration(ctx context.Context, gameID string, seatIdx int, declaration string) error
	GetDeclarations(ctx context.Context, gameID string, numPlayers int) (map[int]string, error)
	SetOrders(ctx context.Context, gameID string, seatIdx int, orders json.RawMessage) error
	GetAllOrders(ctx context.Context, gameID string, numPlayers int) (map[int]json.RawMessage, error)
	MarkReady(ctx context.Context, gameID string, seatIdx int) error
	UnmarkReady(ctx context.Context, gameID string, seatIdx int) error
	ReadyCount(ctx context.Context, gameID string) (int64, error)
	// SetTimer records the round's advisory deadline for display only.
	// Nothing observes its expiry: round timing is not enforced by the
	// host (spec §11.2).
	SetTimer(ctx context.Context, gameID string, deadline time.Time) error
	ClearTimer(ctx context.Context, gameID string) error
	ClearRoundData(ctx context.Context, gameID string, numPlayers int) error
	DeleteGameData(ctx context.Context, gameID string, numPlayers int) error
}
