package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for Redis round-collection state.
func stateKey(gameID string) string                    { return "game:" + gameID + ":state" }
func declarationKey(gameID string, seatIdx int) string { return "game:" + gameID + ":decl:" + strconv.Itoa(seatIdx) }
func ordersKey(gameID string, seatIdx int) string      { return "game:" + gameID + ":orders:" + strconv.Itoa(seatIdx) }
func readyKey(gameID string) string                    { return "game:" + gameID + ":ready" }
func timerKey(gameID string) string                    { return "game:" + gameID + ":timer" }

// SetGameState stores the live board/verdict JSON for display between rounds.
func (c *Client) SetGameState(ctx context.Context, gameID string, state json.RawMessage) error {
	return c.rdb.Set(ctx, stateKey(gameID), []byte(state), 0).Err()
}

// GetGameState retrieves the live board/verdict JSON.
func (c *Client) GetGameState(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game state: %w", err)
	}
	return json.RawMessage(data), nil
}

// SetDeclaration stores one seat's declaration for the round being collected.
func (c *Client) SetDeclaration(ctx context.Context, gameID string, seatIdx int, declaration string) error {
	return c.rdb.Set(ctx, declarationKey(gameID, seatIdx), declaration, 0).Err()
}

// GetDeclarations retrieves every seat's declaration submitted so far,
// keyed by seat index. Seats that have not declared are omitted.
func (c *Client) GetDeclarations(ctx context.Context, gameID string, numPlayers int) (map[int]string, error) {
	result := make(map[int]string)
	for seat := 0; seat < numPlayers; seat++ {
		val, err := c.rdb.Get(ctx, declarationKey(gameID, seat)).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get declaration: %w", err)
		}
		result[seat] = val
	}
	return result, nil
}

// SetOrders stores one seat's orders for the round being collected.
func (c *Client) SetOrders(ctx context.Context, gameID string, seatIdx int, orders json.RawMessage) error {
	return c.rdb.Set(ctx, ordersKey(gameID, seatIdx), []byte(orders), 0).Err()
}

// GetAllOrders retrieves the orders submitted so far, keyed by seat index.
func (c *Client) GetAllOrders(ctx context.Context, gameID string, numPlayers int) (map[int]json.RawMessage, error) {
	result := make(map[int]json.RawMessage)
	for seat := 0; seat < numPlayers; seat++ {
		data, err := c.rdb.Get(ctx, ordersKey(gameID, seat)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get orders: %w", err)
		}
		result[seat] = json.RawMessage(data)
	}
	return result, nil
}

// MarkReady adds a seat to the ready set for the game's current round.
func (c *Client) MarkReady(ctx context.Context, gameID string, seatIdx int) error {
	return c.rdb.SAdd(ctx, readyKey(gameID), seatIdx).Err()
}

// UnmarkReady removes a seat from the ready set.
func (c *Client) UnmarkReady(ctx context.Context, gameID string, seatIdx int) error {
	return c.rdb.SRem(ctx, readyKey(gameID), seatIdx).Err()
}

// ReadyCount returns how many seats have marked ready this round.
func (c *Client) ReadyCount(ctx context.Context, gameID string) (int64, error) {
	return c.rdb.SCard(ctx, readyKey(gameID)).Result()
}

// SetTimer records the round's advisory deadline for display purposes.
// Nothing observes this key's expiry: round timing is advisory only,
// so there is no grace period and no force-resolve listener watching it.
func (c *Client) SetTimer(ctx context.Context, gameID string, deadline time.Time) error {
	ttl := time.Until(deadline)
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.rdb.Set(ctx, timerKey(gameID), deadline.Unix(), ttl).Err()
}

// ClearTimer removes the advisory timer for a game.
func (c *Client) ClearTimer(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, timerKey(gameID)).Err()
}

// ClearRoundData removes declarations, orders, ready state, and the
// timer for a game. Called after a round resolves, before the next
// round's collection begins.
func (c *Client) ClearRoundData(ctx context.Context, gameID string, numPlayers int) error {
	keys := []string{readyKey(gameID), timerKey(gameID)}
	for seat := 0; seat < numPlayers; seat++ {
		keys = append(keys, declarationKey(gameID, seat), ordersKey(gameID, seat))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// DeleteGameData removes all Redis data for a game (on game end).
func (c *Client) DeleteGameData(ctx context.Context, gameID string, numPlayers int) error {
	keys := []string{stateKey(gameID), readyKey(gameID), timerKey(gameID)}
	for seat := 0; seat < numPlayers; seat++ {
		keys = append(keys, declarationKey(gameID, seat), ordersKey(gameID, seat))
	}
	return c.rdb.Del(ctx, keys...).Err()
}
