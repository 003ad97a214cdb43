package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/akngs/territory/internal/model"
	"github.com/akngs/territory/internal/repository"
	"github.com/akngs/territory/pkg/territory"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameNotWaiting = errors.New("game is not in waiting status")
	ErrGameFull       = errors.New("game already has every seat claimed")
	ErrNotEnough      = errors.New("not every seat has been claimed yet")
	ErrNotCreator     = errors.New("only the creator can do that")
	ErrGameNotActive  = errors.New("game is not active")
	ErrAlreadyJoined  = errors.New("already joined this game")
	ErrNotInGame      = errors.New("you are not in this game")
)

// GameService handles lobby lifecycle: creation, seat assignment, and
// starting a match once every seat is claimed.
type GameService struct {
	gameRepo  repository.GameRepository
	roundRepo repository.RoundRepository
	cache     repository.GameCache
}

// NewGameService creates a GameService.
func NewGameService(gameRepo repository.GameRepository, roundRepo repository.RoundRepository, cache repository.GameCache) *GameService {
	return &GameService{gameRepo: gameRepo, roundRepo: roundRepo, cache: cache}
}

// CreateGame creates a new game in "waiting" status. numPlayers is the
// number of seats the lobby accepts; mapSize and maxRounds feed
// pkg/territory.Config once the game starts. A zero seed is replaced
// with a random one so every game still has a recorded, replayable
// seed (spec §9).
func (s *GameService) CreateGame(ctx context.Context, name, creatorID, roundDuration string, numPlayers, mapSize, maxRounds int, seed int64) (*model.Game, error) {
	if roundDuration == "" {
		roundDuration = "24 hours"
	}
	if seed == 0 {
		seed = rand.Int63()
	}

	game, err := s.gameRepo.Create(ctx, name, creatorID, roundDuration, numPlayers, mapSize, maxRounds, seed)
	if err != nil {
		return nil, err
	}

	if _, err := s.gameRepo.JoinGame(ctx, game.ID, creatorID); err != nil {
		return nil, fmt.Errorf("auto-join creator: %w", err)
	}

	return s.gameRepo.FindByID(ctx, game.ID)
}

// JoinGame assigns the caller the lowest unclaimed seat index.
func (s *GameService) JoinGame(ctx context.Context, gameID, userID string) (int, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if game == nil {
		return 0, ErrGameNotFound
	}
	if game.Status != "waiting" {
		return 0, ErrGameNotWaiting
	}
	for _, p := range game.Players {
		if p.UserID == userID {
			return 0, ErrAlreadyJoined
		}
	}

	seatIdx, err := s.gameRepo.JoinGame(ctx, gameID, userID)
	switch {
	case errors.Is(err, repository.ErrSeatsFull):
		return 0, ErrGameFull
	case errors.Is(err, repository.ErrGameNotWaiting):
		return 0, ErrGameNotWaiting
	case err != nil:
		return 0, err
	}
	return seatIdx, nil
}

// StartGame performs initial setup (pkg/territory.NewGame) and creates
// the first round. Only the creator may start, and every seat must be
// claimed first: a partial lobby never silently starts short-handed.
func (s *GameService) StartGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "waiting" {
		return nil, ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if len(game.Players) != game.NumPlayers {
		return nil, ErrNotEnough
	}

	cfg := territory.DefaultConfig()
	cfg.MapSize = game.MapSize
	cfg.MaxRounds = game.MaxRounds

	rng := rand.New(rand.NewSource(game.Seed))
	gs, err := territory.NewGame(game.ID, game.NumPlayers, cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("initial setup: %w", err)
	}

	round := gs.Current()
	boardBefore := territory.EncodeGrid(round.BoardBefore)
	deadline := roundDeadline(game.RoundDuration)

	if _, err := s.roundRepo.CreateRound(ctx, gameID, round.RoundNumber, boardBefore, deadline); err != nil {
		return nil, fmt.Errorf("create first round: %w", err)
	}
	if err := s.gameRepo.Start(ctx, gameID); err != nil {
		return nil, err
	}
	if err := s.cache.SetGameState(ctx, gameID, stateJSON(round.RoundNumber, boardBefore, "")); err != nil {
		return nil, fmt.Errorf("seed game state cache: %w", err)
	}
	if err := s.cache.SetTimer(ctx, gameID, deadline); err != nil {
		return nil, fmt.Errorf("set timer: %w", err)
	}

	return s.gameRepo.FindByID(ctx, gameID)
}

// GetGame returns a game by ID.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// DeleteGame removes a waiting game. Only the creator can delete it.
func (s *GameService) DeleteGame(ctx context.Context, gameID, userID string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return ErrNotCreator
	}
	return s.gameRepo.Delete(ctx, gameID)
}

// ListGames returns open games, games the user is in, or finished games.
func (s *GameService) ListGames(ctx context.Context, userID, filter string) ([]model.Game, error) {
	switch filter {
	case "my":
		return s.gameRepo.ListByUser(ctx, userID)
	case "finished":
		return s.gameRepo.ListFinished(ctx)
	default:
		return s.gameRepo.ListOpen(ctx)
	}
}
