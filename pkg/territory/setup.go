package territory

import "math/rand"

// NewGame performs initial setup (spec §4.9) and returns a fresh
// GameState whose only round is round 1, pre-orders. rng is the
// caller-supplied random source (spec §9: "a seedable RNG passed in
// at game creation makes the entire game deterministic and
// replayable"); pass rand.New(rand.NewSource(seed)) for reproducible
// games.
func NewGame(gameId string, numPlayers int, cfg Config, rng *rand.Rand) (*GameState, error) {
	if err := cfg.Validate(numPlayers); err != nil {
		return nil, err
	}

	board := NewBoard(cfg.MapSize)

	edge := edgeCoordinates(cfg.MapSize)
	rng.Shuffle(len(edge), func(i, j int) { edge[i], edge[j] = edge[j], edge[i] })
	starting := edge[:numPlayers]

	startingSet := make(map[Coordinate]bool, numPlayers)
	for idx, c := range starting {
		board.Set(c, Square{Owner: PlayerAt(idx), Units: cfg.StartingUnits})
		startingSet[c] = true
	}

	var candidates []Coordinate
	for y := 0; y < cfg.MapSize; y++ {
		for x := 0; x < cfg.MapSize; x++ {
			c := Coordinate{X: x, Y: y}
			if !startingSet[c] {
				candidates = append(candidates, c)
			}
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

	resourceCount := ceilDiv(cfg.MapSize*cfg.MapSize*cfg.ResourceSquarePct, 100)
	if resourceCount > len(candidates) {
		resourceCount = len(candidates)
	}
	for _, c := range candidates[:resourceCount] {
		sq := board.At(c)
		sq.IsResource = true
		board.Set(c, sq)
	}

	round := &RoundRecord{
		RoundNumber:  1,
		Declarations: nil,
		Orders:       make([][]Order, numPlayers),
		BoardBefore:  board,
	}

	return &GameState{
		GameId:       gameId,
		Config:       cfg,
		NumPlayers:   numPlayers,
		CurrentRound: 1,
		Rounds:       []*RoundRecord{round},
		Verdict:      Verdict{Kind: Ongoing},
	}, nil
}

// edgeCoordinates enumerates every coordinate on the outer edge of a
// mapSize x mapSize board, in row-major order.
func edgeCoordinates(mapSize int) []Coordinate {
	var edge []Coordinate
	for y := 0; y < mapSize; y++ {
		for x := 0; x < mapSize; x++ {
			if x == 0 || y == 0 || x == mapSize-1 || y == mapSize-1 {
				edge = append(edge, Coordinate{X: x, Y: y})
			}
		}
	}
	return edge
}

// ceilDiv computes ceil(num/den) for non-negative num, positive den.
func ceilDiv(num, den int) int {
	return (num + den - 1) / den
}
