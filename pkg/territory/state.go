package territory

// Config holds the recognized per-game configuration options (spec
// §3.2). Zero values are not valid defaults; use DefaultConfig and
// override as needed.
type Config struct {
	MinPlayers         int
	MaxPlayers         int
	MapSize            int
	MaxRounds          int
	StartingUnits      int
	MaxPlanLength      int
	DeclarationCount   int
	MaxOrdersPerRound  int
	ResourceSquarePct  int
	BaseProduction     int
	ResourceProduction int
	ProductionCap      int
}

// DefaultConfig returns the defaults used throughout spec §8's
// end-to-end scenarios.
func DefaultConfig() Config {
	return Config{
		MinPlayers:         3,
		MaxPlayers:         20,
		MapSize:            5,
		MaxRounds:          15,
		StartingUnits:      5,
		MaxPlanLength:      280,
		DeclarationCount:   1,
		MaxOrdersPerRound:  10,
		ResourceSquarePct:  10,
		BaseProduction:     1,
		ResourceProduction: 2,
		ProductionCap:      21,
	}
}

// Validate checks config bounds, returning an InvalidConfig *Error on
// the first violation found.
func (c Config) Validate(numPlayers int) error {
	if c.MapSize < 2 {
		return newErr(InvalidConfig, "mapSize must be >= 2, got %d", c.MapSize)
	}
	if c.MinPlayers < 1 {
		return newErr(InvalidConfig, "minPlayers must be >= 1, got %d", c.MinPlayers)
	}
	if c.MaxPlayers > MaxPlayers {
		return newErr(InvalidConfig, "maxPlayers must be <= %d, got %d", MaxPlayers, c.MaxPlayers)
	}
	if c.MinPlayers > c.MaxPlayers {
		return newErr(InvalidConfig, "minPlayers (%d) exceeds maxPlayers (%d)", c.MinPlayers, c.MaxPlayers)
	}
	if numPlayers < c.MinPlayers || numPlayers > c.MaxPlayers {
		return newErr(InvalidConfig, "numPlayers %d outside configured bounds [%d,%d]", numPlayers, c.MinPlayers, c.MaxPlayers)
	}
	if numPlayers > MaxPlayers {
		return newErr(InvalidConfig, "numPlayers %d exceeds the %d-player ceiling (letters a..t)", numPlayers, MaxPlayers)
	}
	if c.MaxRounds < 1 {
		return newErr(InvalidConfig, "maxRounds must be >= 1, got %d", c.MaxRounds)
	}
	if c.StartingUnits < 1 {
		return newErr(InvalidConfig, "startingUnits must be >= 1, got %d", c.StartingUnits)
	}
	if c.DeclarationCount < 1 {
		return newErr(InvalidConfig, "declarationCount must be >= 1, got %d", c.DeclarationCount)
	}
	if c.MaxOrdersPerRound < 0 {
		return newErr(InvalidConfig, "maxOrdersPerRound must be >= 0, got %d", c.MaxOrdersPerRound)
	}
	if c.ResourceSquarePct < 0 || c.ResourceSquarePct > 100 {
		return newErr(InvalidConfig, "resourceSquarePct must be in [0,100], got %d", c.ResourceSquarePct)
	}
	if numPlayers > 4*c.MapSize-4 {
		return newErr(InvalidConfig, "numPlayers %d exceeds the %d edge squares available on a %dx%d board", numPlayers, 4*c.MapSize-4, c.MapSize, c.MapSize)
	}
	return nil
}

// VerdictKind is the tag of a Verdict sum type (spec §9 design note).
type VerdictKind int

const (
	Ongoing VerdictKind = iota
	Winner
	MultiWinner
	Draw
)

// Verdict is the terminal-condition oracle's output. Players is
// populated only for Winner (length 1) and MultiWinner (length >= 2).
type Verdict struct {
	Kind    VerdictKind
	Players []PlayerId
}

// IsTerminal reports whether the verdict ends the game.
func (v Verdict) IsTerminal() bool {
	return v.Kind != Ongoing
}

// RoundRecord is one round's declarations, submitted orders, and the
// board as it stood before orders executed (spec §3.1).
type RoundRecord struct {
	RoundNumber  int
	Declarations []string
	Orders       [][]Order // indexed by player ordinal; nil entry = no orders for that player
	BoardBefore  *Board

	declarationsPhase int // number of declaration phases completed so far
	ordersSubmitted   bool
}

// GameState is the full persisted state of one game (spec §3.1).
type GameState struct {
	GameId       string
	Config       Config
	NumPlayers   int
	CurrentRound int
	Rounds       []*RoundRecord
	Verdict      Verdict
}

// Current returns the in-progress round (the last element of Rounds).
func (gs *GameState) Current() *RoundRecord {
	return gs.Rounds[len(gs.Rounds)-1]
}
