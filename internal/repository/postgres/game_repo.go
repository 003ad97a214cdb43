package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/akngs/territory/internal/model"
	"github.com/akngs/territory/internal/repository"
	"github.com/lib/pq"
)

// GameRepo handles game and seat database operations.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo creates a GameRepo.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

// Create inserts a new game lobby.
func (r *GameRepo) Create(ctx context.Context, name, creatorID, roundDuration string, numPlayers, mapSize, maxRounds int, seed int64) (*model.Game, error) {
	var g model.Game
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO games (name, creator_id, round_duration, num_players, map_size, max_rounds, seed)
		 VALUES ($1, $2, $3::interval, $4, $5, $6, $7)
		 RETURNING id, name, creator_id, status, round_duration, num_players, map_size, max_rounds, seed, created_at`,
		name, creatorID, roundDuration, numPlayers, mapSize, maxRounds, seed,
	).Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &g.RoundDuration, &g.NumPlayers, &g.MapSize, &g.MaxRounds, &g.Seed, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return &g, nil
}

// FindByID returns a game by ID with its seats.
func (r *GameRepo) FindByID(ctx context.Context, id string) (*model.Game, error) {
	var g model.Game
	var verdict sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, creator_id, status, verdict, verdict_seats, round_duration, num_players, map_size, max_rounds,
		        seed, created_at, started_at, finished_at
		 FROM games WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &verdict, pq.Array(&g.VerdictSeats), &g.RoundDuration, &g.NumPlayers,
		&g.MapSize, &g.MaxRounds, &g.Seed, &g.CreatedAt, &g.StartedAt, &g.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	g.Verdict = verdict.String

	seats, err := r.ListSeats(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Players = seats
	return &g, nil
}

// ListOpen returns games in "waiting" status.
func (r *GameRepo) ListOpen(ctx context.Context) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, creator_id, status, round_duration, num_players, map_size, max_rounds, seed, created_at
		 FROM games WHERE status = 'waiting' ORDER BY created_at DESC LIMIT 50`)
	if err != nil {
		return nil, fmt.Errorf("list open games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		var g model.Game
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &g.RoundDuration, &g.NumPlayers, &g.MapSize, &g.MaxRounds, &g.Seed, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// ListByUser returns all games a user is part of (as seat holder or creator).
func (r *GameRepo) ListByUser(ctx context.Context, userID string) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT g.id, g.name, g.creator_id, g.status, g.verdict, g.round_duration, g.num_players, g.map_size,
		        g.max_rounds, g.seed, g.created_at, g.started_at, g.finished_at
		 FROM games g LEFT JOIN seats s ON g.id = s.game_id AND s.user_id = $1
		 WHERE s.user_id = $1 OR g.creator_id = $1
		 ORDER BY g.created_at DESC LIMIT 50`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		var g model.Game
		var verdict sql.NullString
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &verdict, &g.RoundDuration, &g.NumPlayers, &g.MapSize,
			&g.MaxRounds, &g.Seed, &g.CreatedAt, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.Verdict = verdict.String
		games = append(games, g)
	}
	return games, rows.Err()
}

// ListFinished returns all finished games, most recent first.
func (r *GameRepo) ListFinished(ctx context.Context) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.creator_id, g.status, g.verdict, g.verdict_seats, g.round_duration, g.num_players,
		        g.map_size, g.max_rounds, g.seed, g.created_at, g.started_at, g.finished_at
		 FROM games g
		 WHERE g.status = 'finished'
		 ORDER BY g.finished_at DESC LIMIT 100`)
	if err != nil {
		return nil, fmt.Errorf("list finished games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		var g model.Game
		var verdict sql.NullString
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &verdict, pq.Array(&g.VerdictSeats), &g.RoundDuration,
			&g.NumPlayers, &g.MapSize, &g.MaxRounds, &g.Seed, &g.CreatedAt, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.Verdict = verdict.String
		games = append(games, g)
	}
	return games, rows.Err()
}

// ListActive returns all games with status 'active', including their seats.
func (r *GameRepo) ListActive(ctx context.Context) ([]model.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, creator_id, status, round_duration, num_players, map_size, max_rounds, seed, created_at
		 FROM games WHERE status = 'active' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active games: %w", err)
	}
	defer rows.Close()

	var games []model.Game
	for rows.Next() {
		var g model.Game
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatorID, &g.Status, &g.RoundDuration, &g.NumPlayers, &g.MapSize, &g.MaxRounds, &g.Seed, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		seats, err := r.ListSeats(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		g.Players = seats
		games = append(games, g)
	}
	return games, rows.Err()
}

// JoinGame assigns the caller the lowest unclaimed seat index. Returns
// an error if the game is not waiting or every seat is taken.
func (r *GameRepo) JoinGame(ctx context.Context, gameID, userID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var status string
	var numPlayers int
	err = tx.QueryRowContext(ctx,
		`SELECT status, num_players FROM games WHERE id = $1 FOR UPDATE`, gameID,
	).Scan(&status, &numPlayers)
	if err != nil {
		return 0, fmt.Errorf("lock game: %w", err)
	}
	if status != "waiting" {
		return 0, fmt.Errorf("join game %s: %w", gameID, repository.ErrGameNotWaiting)
	}

	rows, err := tx.QueryContext(ctx, `SELECT seat_idx FROM seats WHERE game_id = $1 ORDER BY seat_idx`, gameID)
	if err != nil {
		return 0, fmt.Errorf("list claimed seats: %w", err)
	}
	claimed := make(map[int]bool)
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan seat: %w", err)
		}
		claimed[idx] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(claimed) >= numPlayers {
		return 0, fmt.Errorf("join game %s: %w", gameID, repository.ErrSeatsFull)
	}

	seatIdx := 0
	for claimed[seatIdx] {
		seatIdx++
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO seats (game_id, user_id, seat_idx) VALUES ($1, $2, $3)`,
		gameID, userID, seatIdx,
	)
	if err != nil {
		return 0, fmt.Errorf("insert seat: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit join: %w", err)
	}
	return seatIdx, nil
}

// ListSeats returns all claimed seats in a game, ordered by seat index.
func (r *GameRepo) ListSeats(ctx context.Context, gameID string) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game_id, user_id, seat_idx, joined_at FROM seats WHERE game_id = $1 ORDER BY seat_idx`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	defer rows.Close()

	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.GameID, &s.UserID, &s.SeatIdx, &s.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// SeatCount returns the number of claimed seats in a game.
func (r *GameRepo) SeatCount(ctx context.Context, gameID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seats WHERE game_id = $1`, gameID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("seat count: %w", err)
	}
	return count, nil
}

// Start marks a game active once every seat is filled.
func (r *GameRepo) Start(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = 'active', started_at = now() WHERE id = $1`, gameID,
	)
	if err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	return nil
}

// SetFinished marks a game finished with its verdict and the seat
// indices it names (empty for Draw, one for Winner, several for
// MultiWinner).
func (r *GameRepo) SetFinished(ctx context.Context, gameID, verdict string, verdictSeats []int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = 'finished', verdict = $1, verdict_seats = $2, finished_at = now() WHERE id = $3`,
		verdict, pq.Array(verdictSeats), gameID,
	)
	if err != nil {
		return fmt.Errorf("set finished: %w", err)
	}
	return nil
}

// Delete removes a game and all associated data (cascades to seats and rounds).
func (r *GameRepo) Delete(ctx context.Context, gameID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}
