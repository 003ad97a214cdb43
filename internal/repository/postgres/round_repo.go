package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akngs/territory/internal/model"
)

// RoundRepo handles round, declaration, and order database operations.
type RoundRepo struct {
	db *sql.DB
}

// NewRoundRepo creates a RoundRepo.
func NewRoundRepo(db *sql.DB) *RoundRepo {
	return &RoundRepo{db: db}
}

// CreateRound inserts a new round.
func (r *RoundRepo) CreateRound(ctx context.Context, gameID string, roundNumber int, boardBefore string, deadline time.Time) (*model.Round, error) {
	var rd model.Round
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO rounds (game_id, round_number, board_before, deadline)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, game_id, round_number, board_before, deadline, created_at`,
		gameID, roundNumber, boardBefore, deadline,
	).Scan(&rd.ID, &rd.GameID, &rd.RoundNumber, &rd.BoardBefore, &rd.Deadline, &rd.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create round: %w", err)
	}
	return &rd, nil
}

// CurrentRound returns the latest unresolved round for a game.
func (r *RoundRepo) CurrentRound(ctx context.Context, gameID string) (*model.Round, error) {
	var rd model.Round
	var boardAfter, declarations, orders sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, game_id, round_number, board_before, board_after, declarations, orders, deadline, resolved_at, created_at
		 FROM rounds WHERE game_id = $1 AND resolved_at IS NULL
		 ORDER BY round_number DESC LIMIT 1`, gameID,
	).Scan(&rd.ID, &rd.GameID, &rd.RoundNumber, &rd.BoardBefore, &boardAfter, &declarations, &orders, &rd.Deadline, &rd.ResolvedAt, &rd.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current round: %w", err)
	}
	rd.BoardAfter = boardAfter.String
	if declarations.Valid {
		rd.Declarations = json.RawMessage(declarations.String)
	}
	if orders.Valid {
		rd.Orders = json.RawMessage(orders.String)
	}
	return &rd, nil
}

// ListRounds returns all rounds for a game in chronological order.
func (r *RoundRepo) ListRounds(ctx context.Context, gameID string) ([]model.Round, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, round_number, board_before, board_after, declarations, orders, deadline, resolved_at, created_at
		 FROM rounds WHERE game_id = $1 ORDER BY round_number`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	var rounds []model.Round
	for rows.Next() {
		var rd model.Round
		var boardAfter, declarations, orders sql.NullString
		if err := rows.Scan(&rd.ID, &rd.GameID, &rd.RoundNumber, &rd.BoardBefore, &boardAfter, &declarations, &orders,
			&rd.Deadline, &rd.ResolvedAt, &rd.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		rd.BoardAfter = boardAfter.String
		if declarations.Valid {
			rd.Declarations = json.RawMessage(declarations.String)
		}
		if orders.Valid {
			rd.Orders = json.RawMessage(orders.String)
		}
		rounds = append(rounds, rd)
	}
	return rounds, rows.Err()
}

// SaveDeclarations stores the declarations submitted for a round.
func (r *RoundRepo) SaveDeclarations(ctx context.Context, roundID string, declarations json.RawMessage) error {
	_, err := r.db.ExecContext(ctx, `UPDATE rounds SET declarations = $1 WHERE id = $2`, declarations, roundID)
	if err != nil {
		return fmt.Errorf("save declarations: %w", err)
	}
	return nil
}

// SaveOrders stores the orders submitted for a round.
func (r *RoundRepo) SaveOrders(ctx context.Context, roundID string, orders json.RawMessage) error {
	_, err := r.db.ExecContext(ctx, `UPDATE rounds SET orders = $1 WHERE id = $2`, orders, roundID)
	if err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}

// ResolveRound marks a round resolved and stores the resulting board.
func (r *RoundRepo) ResolveRound(ctx context.Context, roundID string, boardAfter string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE rounds SET board_after = $1, resolved_at = now() WHERE id = $2`,
		boardAfter, roundID,
	)
	if err != nil {
		return fmt.Errorf("resolve round: %w", err)
	}
	return nil
}
