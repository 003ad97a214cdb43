package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/akngs/territory/internal/model"
	"github.com/akngs/territory/internal/repository"
	"github.com/akngs/territory/pkg/territory"
)

var (
	ErrNoActiveRound = errors.New("no active round")
	ErrInvalidOrder  = errors.New("invalid order line")
)

// RoundService orchestrates round transitions: declaration collection,
// order collection, and resolution (pkg/territory's pure driver) for
// the async, no-deadline-enforced round model.
type RoundService struct {
	gameRepo    repository.GameRepository
	roundRepo   repository.RoundRepository
	cache       repository.GameCache
	broadcaster Broadcaster

	// gameLocks prevents concurrent resolution of the same game: the
	// all-ready trigger from the last submitter and an operator's
	// explicit early-resolve call can race.
	gameLocks sync.Map
}

// NewRoundService creates a RoundService.
func NewRoundService(gameRepo repository.GameRepository, roundRepo repository.RoundRepository, cache repository.GameCache, broadcaster Broadcaster) *RoundService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &RoundService{gameRepo: gameRepo, roundRepo: roundRepo, cache: cache, broadcaster: broadcaster}
}

func (s *RoundService) gameLock(gameID string) *sync.Mutex {
	v, _ := s.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// seatOf returns the caller's seat index in an active game, or
// ErrNotInGame.
func seatOf(game *model.Game, userID string) (int, error) {
	for _, p := range game.Players {
		if p.UserID == userID {
			return p.SeatIdx, nil
		}
	}
	return 0, ErrNotInGame
}

func (s *RoundService) activeGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "active" {
		return nil, ErrGameNotActive
	}
	return game, nil
}

// config returns the core Config for a game. Only mapSize and
// maxRounds vary per lobby (spec §6's CLI surface); the remaining
// knobs stay at their spec §8 defaults for every hosted game.
func config(game *model.Game) territory.Config {
	cfg := territory.DefaultConfig()
	cfg.MapSize = game.MapSize
	cfg.MaxRounds = game.MaxRounds
	return cfg
}

// SubmitDeclaration caches one seat's declaration for the round being
// collected. Declarations are collected independently of orders and
// don't trigger resolution.
func (s *RoundService) SubmitDeclaration(ctx context.Context, gameID, userID, text string) error {
	game, err := s.activeGame(ctx, gameID)
	if err != nil {
		return err
	}
	seatIdx, err := seatOf(game, userID)
	if err != nil {
		return err
	}
	if err := s.cache.SetDeclaration(ctx, gameID, seatIdx, text); err != nil {
		return fmt.Errorf("cache declaration: %w", err)
	}

	declarations, err := s.cache.GetDeclarations(ctx, gameID, game.NumPlayers)
	if err != nil {
		return fmt.Errorf("get declarations: %w", err)
	}
	s.broadcaster.BroadcastGameEvent(gameID, "declaration_submitted", map[string]any{
		"seat_idx":  seatIdx,
		"collected": len(declarations),
		"total":     game.NumPlayers,
	})
	return nil
}

// SubmitOrders validates one seat's order line against the round's
// pre-order board, caches it, marks the seat ready, and triggers
// resolution once every seat is ready. Resubmitting overwrites the
// previous line; a seat may resubmit any number of times before the
// round resolves.
func (s *RoundService) SubmitOrders(ctx context.Context, gameID, userID, line string) error {
	game, err := s.activeGame(ctx, gameID)
	if err != nil {
		return err
	}
	seatIdx, err := seatOf(game, userID)
	if err != nil {
		return err
	}

	round, err := s.roundRepo.CurrentRound(ctx, gameID)
	if err != nil {
		return err
	}
	if round == nil {
		return ErrNoActiveRound
	}
	board, err := territory.DecodeGrid(round.BoardBefore)
	if err != nil {
		return fmt.Errorf("decode board: %w", err)
	}

	if _, err := territory.ParseOrderLine(line, territory.PlayerAt(seatIdx), board, config(game)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidOrder, err)
	}

	encoded, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("marshal order line: %w", err)
	}
	if err := s.cache.SetOrders(ctx, gameID, seatIdx, encoded); err != nil {
		return fmt.Errorf("cache orders: %w", err)
	}
	if err := s.cache.MarkReady(ctx, gameID, seatIdx); err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}

	readyCount, err := s.cache.ReadyCount(ctx, gameID)
	if err != nil {
		return fmt.Errorf("ready count: %w", err)
	}
	s.broadcaster.BroadcastGameEvent(gameID, "player_ready", map[string]any{
		"ready_count": readyCount,
		"total":       game.NumPlayers,
	})

	if int(readyCount) >= game.NumPlayers {
		return s.ResolveRound(ctx, gameID)
	}
	return nil
}

// UnmarkReady withdraws a seat's readiness, e.g. before resubmitting
// orders under an order line that needs more thought.
func (s *RoundService) UnmarkReady(ctx context.Context, gameID, userID string) error {
	game, err := s.activeGame(ctx, gameID)
	if err != nil {
		return err
	}
	seatIdx, err := seatOf(game, userID)
	if err != nil {
		return err
	}
	return s.cache.UnmarkReady(ctx, gameID, seatIdx)
}

// ResolveRound resolves the current round once every seat is ready.
// It's also called directly by SubmitOrders the moment the last seat
// marks ready.
func (s *RoundService) ResolveRound(ctx context.Context, gameID string) error {
	return s.resolveRoundInternal(ctx, gameID, false)
}

// ResolveRoundEarly force-resolves the current round before every seat
// is ready. Seats that never submitted are treated as having issued no
// orders. Only the game's creator may trigger this (enforced by the
// caller/handler).
func (s *RoundService) ResolveRoundEarly(ctx context.Context, gameID string) error {
	return s.resolveRoundInternal(ctx, gameID, true)
}

func (s *RoundService) resolveRoundInternal(ctx context.Context, gameID string, early bool) error {
	mu := s.gameLock(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := s.activeGame(ctx, gameID)
	if err != nil {
		return err
	}
	round, err := s.roundRepo.CurrentRound(ctx, gameID)
	if err != nil {
		return err
	}
	if round == nil {
		return ErrNoActiveRound
	}

	cfg := config(game)
	board, err := territory.DecodeGrid(round.BoardBefore)
	if err != nil {
		return fmt.Errorf("decode board: %w", err)
	}

	gs := &territory.GameState{
		GameId:       game.ID,
		Config:       cfg,
		NumPlayers:   game.NumPlayers,
		CurrentRound: round.RoundNumber,
		Rounds: []*territory.RoundRecord{{
			RoundNumber: round.RoundNumber,
			BoardBefore: board,
			Orders:      make([][]territory.Order, game.NumPlayers),
		}},
		Verdict: territory.Verdict{Kind: territory.Ongoing},
	}

	declarations, err := s.cache.GetDeclarations(ctx, gameID, game.NumPlayers)
	if err != nil {
		return fmt.Errorf("get declarations: %w", err)
	}
	declLines := linesFromSeatMap(declarations, game.NumPlayers)
	if err := gs.SubmitDeclarations(declLines); err != nil {
		return fmt.Errorf("submit declarations: %w", err)
	}

	rawOrders, err := s.cache.GetAllOrders(ctx, gameID, game.NumPlayers)
	if err != nil {
		return fmt.Errorf("get orders: %w", err)
	}
	orderLines, err := decodeAndRevalidateOrders(board, cfg, rawOrders, game.NumPlayers)
	if err != nil {
		return err
	}
	if err := gs.SubmitOrders(orderLines, true); err != nil {
		return fmt.Errorf("submit orders: %w", err)
	}

	if err := s.persistSubmission(ctx, round.ID, declLines, orderLines); err != nil {
		return err
	}

	if err := gs.Resolve(); err != nil {
		return fmt.Errorf("resolve round: %w", err)
	}

	if gs.Verdict.IsTerminal() {
		return s.finishGame(ctx, game, round, gs.Verdict, early)
	}
	return s.advanceRound(ctx, game, round, gs, early)
}

// linesFromSeatMap converts a sparse seat-indexed map into a dense,
// NumPlayers-length slice, defaulting missing seats to "".
func linesFromSeatMap[V ~string | json.RawMessage](m map[int]V, numPlayers int) []string {
	lines := make([]string, numPlayers)
	for seat, v := range m {
		if seat >= 0 && seat < numPlayers {
			lines[seat] = string(v)
		}
	}
	return lines
}

// decodeAndRevalidateOrders unmarshals each seat's cached order-line
// JSON and re-validates it against the round's board concurrently.
// This is defense in depth against a stale or corrupted cache entry:
// submission-time validation already rejects bad lines, but a seat
// whose cached line somehow fails here is treated as having submitted
// no orders rather than aborting the whole round.
func decodeAndRevalidateOrders(board *territory.Board, cfg territory.Config, raw map[int]json.RawMessage, numPlayers int) ([]string, error) {
	lines := make([]string, numPlayers)
	for seat, data := range raw {
		if seat < 0 || seat >= numPlayers {
			continue
		}
		var line string
		if err := json.Unmarshal(data, &line); err != nil {
			continue
		}
		lines[seat] = line
	}

	g, _ := errgroup.WithContext(context.Background())
	for seat := 0; seat < numPlayers; seat++ {
		seat := seat
		line := lines[seat]
		if line == "" {
			continue
		}
		g.Go(func() error {
			if _, err := territory.ParseOrderLine(line, territory.PlayerAt(seat), board, cfg); err != nil {
				lines[seat] = ""
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}

// persistSubmission records the finalized declaration and order lines
// on the round's durable record, for history/audit once it resolves.
func (s *RoundService) persistSubmission(ctx context.Context, roundID string, declLines, orderLines []string) error {
	declJSON, err := json.Marshal(declLines)
	if err != nil {
		return fmt.Errorf("marshal declarations: %w", err)
	}
	if err := s.roundRepo.SaveDeclarations(ctx, roundID, declJSON); err != nil {
		return fmt.Errorf("save declarations: %w", err)
	}
	ordersJSON, err := json.Marshal(orderLines)
	if err != nil {
		return fmt.Errorf("marshal orders: %w", err)
	}
	if err := s.roundRepo.SaveOrders(ctx, roundID, ordersJSON); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}

// finishGame persists a terminal verdict. Per spec §3.1, a terminal
// round's board stays the pre-resolution snapshot -- no further round
// is appended and no post-resolution board is retained -- so
// BoardAfter is left empty; clients read the outcome from verdict.
func (s *RoundService) finishGame(ctx context.Context, game *model.Game, round *model.Round, verdict territory.Verdict, early bool) error {
	if err := s.roundRepo.ResolveRound(ctx, round.ID, ""); err != nil {
		return fmt.Errorf("resolve final round: %w", err)
	}
	verdictStr, seats := describeVerdict(verdict)
	if err := s.gameRepo.SetFinished(ctx, game.ID, verdictStr, seats); err != nil {
		return fmt.Errorf("set finished: %w", err)
	}
	if err := s.cache.DeleteGameData(ctx, game.ID, game.NumPlayers); err != nil {
		return fmt.Errorf("delete game data: %w", err)
	}
	s.broadcaster.BroadcastGameEvent(game.ID, "game_ended", map[string]any{
		"verdict": verdictStr,
		"seats":   seats,
		"early":   early,
	})
	return nil
}

// advanceRound persists the resolved round and opens the next one.
func (s *RoundService) advanceRound(ctx context.Context, game *model.Game, round *model.Round, gs *territory.GameState, early bool) error {
	next := gs.Current()
	boardAfter := territory.EncodeGrid(next.BoardBefore)

	if err := s.roundRepo.ResolveRound(ctx, round.ID, boardAfter); err != nil {
		return fmt.Errorf("resolve round: %w", err)
	}

	deadline := roundDeadline(game.RoundDuration)
	if _, err := s.roundRepo.CreateRound(ctx, game.ID, next.RoundNumber, boardAfter, deadline); err != nil {
		return fmt.Errorf("create next round: %w", err)
	}
	if err := s.cache.ClearRoundData(ctx, game.ID, game.NumPlayers); err != nil {
		return fmt.Errorf("clear round data: %w", err)
	}
	if err := s.cache.SetGameState(ctx, game.ID, stateJSON(next.RoundNumber, boardAfter, "")); err != nil {
		return fmt.Errorf("set game state: %w", err)
	}
	if err := s.cache.SetTimer(ctx, game.ID, deadline); err != nil {
		return fmt.Errorf("set timer: %w", err)
	}

	s.broadcaster.BroadcastGameEvent(game.ID, "round_resolved", map[string]any{
		"round_number": round.RoundNumber,
		"early":        early,
	})
	s.broadcaster.BroadcastGameEvent(game.ID, "round_changed", map[string]any{
		"round_number": next.RoundNumber,
		"deadline":     deadline,
	})
	return nil
}

// describeVerdict renders a territory.Verdict as the (verdict, seats)
// pair model.Game persists.
func describeVerdict(v territory.Verdict) (string, []int) {
	seats := make([]int, 0, len(v.Players))
	for _, p := range v.Players {
		if idx, ok := territory.PlayerIndex(p); ok {
			seats = append(seats, idx)
		}
	}
	switch v.Kind {
	case territory.Winner:
		return "winner", seats
	case territory.MultiWinner:
		return "multi_winner", seats
	case territory.Draw:
		return "draw", seats
	default:
		return "", seats
	}
}

// GetGameForResolve returns a game for a caller deciding whether to
// force-resolve its current round (e.g. to check creator identity).
func (s *RoundService) GetGameForResolve(ctx context.Context, gameID string) (*model.Game, error) {
	return s.activeGame(ctx, gameID)
}

// GetCurrentRound returns the round currently being collected.
func (s *RoundService) GetCurrentRound(ctx context.Context, gameID string) (*model.Round, error) {
	round, err := s.roundRepo.CurrentRound(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, ErrNoActiveRound
	}
	return round, nil
}

// ListRounds returns a game's full round history.
func (s *RoundService) ListRounds(ctx context.Context, gameID string) ([]model.Round, error) {
	return s.roundRepo.ListRounds(ctx, gameID)
}
