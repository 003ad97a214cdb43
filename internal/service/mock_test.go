package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akngs/territory/internal/model"
	"github.com/akngs/territory/internal/repository"
)

// mockGameRepo implements repository.GameRepository for testing.
type mockGameRepo struct {
	games map[string]*model.Game
	seats map[string][]model.Seat
}

func newMockGameRepo() *mockGameRepo {
	return &mockGameRepo{games: make(map[string]*model.Game), seats: make(map[string][]model.Seat)}
}

func (m *mockGameRepo) Create(_ context.Context, name, creatorID, roundDuration string, numPlayers, mapSize, maxRounds int, seed int64) (*model.Game, error) {
	g := &model.Game{
		ID:            fmt.Sprintf("game-%d", len(m.games)+1),
		Name:          name,
		CreatorID:     creatorID,
		Status:        "waiting",
		RoundDuration: roundDuration,
		NumPlayers:    numPlayers,
		MapSize:       mapSize,
		MaxRounds:     maxRounds,
		Seed:          seed,
		CreatedAt:     time.Now(),
	}
	m.games[g.ID] = g
	return g, nil
}

func (m *mockGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	cp.Players = m.seats[id]
	return &cp, nil
}

func (m *mockGameRepo) ListOpen(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "waiting" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	seen := make(map[string]bool)
	var result []model.Game
	for gameID, seats := range m.seats {
		for _, s := range seats {
			if s.UserID == userID && !seen[gameID] {
				if g, ok := m.games[gameID]; ok {
					result = append(result, *g)
					seen[gameID] = true
				}
			}
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListFinished(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "finished" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListActive(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "active" {
			cp := *g
			cp.Players = m.seats[g.ID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockGameRepo) JoinGame(_ context.Context, gameID, userID string) (int, error) {
	g, ok := m.games[gameID]
	if !ok {
		return 0, fmt.Errorf("join game: game %s not found", gameID)
	}
	if g.Status != "waiting" {
		return 0, fmt.Errorf("join game: %w", repository.ErrGameNotWaiting)
	}
	claimed := make(map[int]bool)
	for _, s := range m.seats[gameID] {
		claimed[s.SeatIdx] = true
	}
	if len(claimed) >= g.NumPlayers {
		return 0, fmt.Errorf("join game: %w", repository.ErrSeatsFull)
	}
	seatIdx := 0
	for claimed[seatIdx] {
		seatIdx++
	}
	m.seats[gameID] = append(m.seats[gameID], model.Seat{GameID: gameID, UserID: userID, SeatIdx: seatIdx, JoinedAt: time.Now()})
	return seatIdx, nil
}

func (m *mockGameRepo) ListSeats(_ context.Context, gameID string) ([]model.Seat, error) {
	return m.seats[gameID], nil
}

func (m *mockGameRepo) SeatCount(_ context.Context, gameID string) (int, error) {
	return len(m.seats[gameID]), nil
}

func (m *mockGameRepo) Start(_ context.Context, gameID string) error {
	if g, ok := m.games[gameID]; ok {
		g.Status = "active"
		now := time.Now()
		g.StartedAt = &now
	}
	return nil
}

func (m *mockGameRepo) SetFinished(_ context.Context, gameID, verdict string, verdictSeats []int) error {
	if g, ok := m.games[gameID]; ok {
		g.Status = "finished"
		g.Verdict = verdict
		g.VerdictSeats = verdictSeats
		now := time.Now()
		g.FinishedAt = &now
	}
	return nil
}

func (m *mockGameRepo) Delete(_ context.Context, gameID string) error {
	delete(m.games, gameID)
	delete(m.seats, gameID)
	return nil
}

// mockUserRepo implements repository.UserRepository for testing.
type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) FindByProviderID(_ context.Context, provider, providerID string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Upsert(_ context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			u.DisplayName = displayName
			return u, nil
		}
	}
	m.seq++
	u := &model.User{
		ID:          fmt.Sprintf("user-%d", m.seq),
		Provider:    provider,
		ProviderID:  providerID,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	if u, ok := m.users[id]; ok {
		u.DisplayName = displayName
	}
	return nil
}

// mockRoundRepo implements repository.RoundRepository for testing.
type mockRoundRepo struct {
	rounds map[string]*model.Round // round ID -> round
	byGame map[string][]string     // gameID -> round IDs, in order
}

func newMockRoundRepo() *mockRoundRepo {
	return &mockRoundRepo{rounds: make(map[string]*model.Round), byGame: make(map[string][]string)}
}

func (m *mockRoundRepo) CreateRound(_ context.Context, gameID string, roundNumber int, boardBefore string, deadline time.Time) (*model.Round, error) {
	r := &model.Round{
		ID:          fmt.Sprintf("round-%d", len(m.rounds)+1),
		GameID:      gameID,
		RoundNumber: roundNumber,
		BoardBefore: boardBefore,
		Deadline:    deadline,
		CreatedAt:   time.Now(),
	}
	m.rounds[r.ID] = r
	m.byGame[gameID] = append(m.byGame[gameID], r.ID)
	return r, nil
}

func (m *mockRoundRepo) CurrentRound(_ context.Context, gameID string) (*model.Round, error) {
	ids := m.byGame[gameID]
	for i := len(ids) - 1; i >= 0; i-- {
		r := m.rounds[ids[i]]
		if r.ResolvedAt == nil {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockRoundRepo) ListRounds(_ context.Context, gameID string) ([]model.Round, error) {
	var result []model.Round
	for _, id := range m.byGame[gameID] {
		result = append(result, *m.rounds[id])
	}
	return result, nil
}

func (m *mockRoundRepo) SaveDeclarations(_ context.Context, roundID string, declarations json.RawMessage) error {
	if r, ok := m.rounds[roundID]; ok {
		r.Declarations = declarations
	}
	return nil
}

func (m *mockRoundRepo) SaveOrders(_ context.Context, roundID string, orders json.RawMessage) error {
	if r, ok := m.rounds[roundID]; ok {
		r.Orders = orders
	}
	return nil
}

func (m *mockRoundRepo) ResolveRound(_ context.Context, roundID string, boardAfter string) error {
	if r, ok := m.rounds[roundID]; ok {
		r.BoardAfter = boardAfter
		now := time.Now()
		r.ResolvedAt = &now
	}
	return nil
}

// mockCache implements repository.GameCache for testing.
type mockCache struct {
	states       map[string]json.RawMessage
	declarations map[string]map[int]string
	orders       map[string]map[int]json.RawMessage
	ready        map[string]map[int]bool
	timers       map[string]time.Time
}

func newMockCache() *mockCache {
	return &mockCache{
		states:       make(map[string]json.RawMessage),
		declarations: make(map[string]map[int]string),
		orders:       make(map[string]map[int]json.RawMessage),
		ready:        make(map[string]map[int]bool),
		timers:       make(map[string]time.Time),
	}
}

func (c *mockCache) SetGameState(_ context.Context, gameID string, state json.RawMessage) error {
	c.states[gameID] = state
	return nil
}

func (c *mockCache) GetGameState(_ context.Context, gameID string) (json.RawMessage, error) {
	return c.states[gameID], nil
}

func (c *mockCache) SetDeclaration(_ context.Context, gameID string, seatIdx int, declaration string) error {
	if c.declarations[gameID] == nil {
		c.declarations[gameID] = make(map[int]string)
	}
	c.declarations[gameID][seatIdx] = declaration
	return nil
}

func (c *mockCache) GetDeclarations(_ context.Context, gameID string, _ int) (map[int]string, error) {
	result := make(map[int]string)
	for k, v := range c.declarations[gameID] {
		result[k] = v
	}
	return result, nil
}

func (c *mockCache) SetOrders(_ context.Context, gameID string, seatIdx int, orders json.RawMessage) error {
	if c.orders[gameID] == nil {
		c.orders[gameID] = make(map[int]json.RawMessage)
	}
	c.orders[gameID][seatIdx] = orders
	return nil
}

func (c *mockCache) GetAllOrders(_ context.Context, gameID string, _ int) (map[int]json.RawMessage, error) {
	result := make(map[int]json.RawMessage)
	for k, v := range c.orders[gameID] {
		result[k] = v
	}
	return result, nil
}

func (c *mockCache) MarkReady(_ context.Context, gameID string, seatIdx int) error {
	if c.ready[gameID] == nil {
		c.ready[gameID] = make(map[int]bool)
	}
	c.ready[gameID][seatIdx] = true
	return nil
}

func (c *mockCache) UnmarkReady(_ context.Context, gameID string, seatIdx int) error {
	if c.ready[gameID] != nil {
		delete(c.ready[gameID], seatIdx)
	}
	return nil
}

func (c *mockCache) ReadyCount(_ context.Context, gameID string) (int64, error) {
	return int64(len(c.ready[gameID])), nil
}

func (c *mockCache) SetTimer(_ context.Context, gameID string, deadline time.Time) error {
	c.timers[gameID] = deadline
	return nil
}

func (c *mockCache) ClearTimer(_ context.Context, gameID string) error {
	delete(c.timers, gameID)
	return nil
}

func (c *mockCache) ClearRoundData(_ context.Context, gameID string, _ int) error {
	delete(c.declarations, gameID)
	delete(c.orders, gameID)
	delete(c.ready, gameID)
	delete(c.timers, gameID)
	return nil
}

func (c *mockCache) DeleteGameData(_ context.Context, gameID string, _ int) error {
	delete(c.states, gameID)
	delete(c.declarations, gameID)
	delete(c.orders, gameID)
	delete(c.ready, gameID)
	delete(c.timers, gameID)
	return nil
}
