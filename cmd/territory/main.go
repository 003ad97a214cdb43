// Command territory is a thin CLI host over pkg/territory: one JSON
// file per game on disk, one verb per invocation. It exists alongside
// cmd/server as the literal CLI contract described in spec §6 ("init",
// "show", "declare", "orders", "advance"); cmd/server is the async
// multiplayer host built on top of the same core package.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/akngs/territory/pkg/territory"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	verb := os.Args[1]
	fs := flag.NewFlagSet(verb, flag.ExitOnError)
	gameID := fs.String("game", "", "game id")
	dir := fs.String("dir", "./territory-data", "state directory")
	numPlayers := fs.Int("players", 0, "number of players (init only)")
	mapSize := fs.Int("map-size", 0, "board size (init only, default from config)")
	maxRounds := fs.Int("max-rounds", 0, "round cap (init only, default from config)")
	seed := fs.Int64("seed", 0, "RNG seed (init only; 0 picks a random seed)")
	fs.Parse(os.Args[2:])

	if *gameID == "" {
		fmt.Fprintln(os.Stderr, "error: -game is required")
		os.Exit(2)
	}

	var err error
	switch verb {
	case "init":
		err = runInit(*dir, *gameID, *numPlayers, *mapSize, *maxRounds, *seed)
	case "show":
		err = runShow(*dir, *gameID)
	case "declare":
		err = runDeclare(*dir, *gameID, os.Stdin)
	case "orders":
		err = runOrders(*dir, *gameID, os.Stdin)
	case "advance":
		err = runAdvance(*dir, *gameID, os.Stdin)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: territory <init|show|declare|orders|advance> -game <id> [flags]")
}

// exitCode maps a core *territory.Error's Kind to a non-zero status;
// any other error (I/O, JSON) exits 1.
func exitCode(err error) int {
	if terr, ok := err.(*territory.Error); ok {
		return int(terr.Kind) + 1
	}
	return 1
}

// persistedRound mirrors territory.RoundRecord's host-visible fields
// (spec §6 "Persisted state"). declarationsPhase/ordersSubmitted stay
// unexported in pkg/territory; this CLI rebuilds the declaration phase
// on load by replaying SubmitDeclarations against the persisted
// declaration lines (a round's order lines are only written together
// with its resolution), the same replay internal/service's round
// collector uses when resolving from cached Redis state.
type persistedRound struct {
	RoundNumber  int      `json:"round_number"`
	BoardBefore  string   `json:"board_before"`
	BoardAfter   string   `json:"board_after,omitempty"`
	Declarations []string `json:"declarations,omitempty"`
	Orders       []string `json:"orders,omitempty"`
}

type persistedVerdict struct {
	Kind    string   `json:"kind"`
	Players []string `json:"players,omitempty"`
}

type persistedGame struct {
	GameId       string           `json:"game_id"`
	Config       territory.Config `json:"config"`
	NumPlayers   int              `json:"num_players"`
	CurrentRound int              `json:"current_round"`
	Verdict      persistedVerdict `json:"verdict"`
	Rounds       []persistedRound `json:"rounds"`
}

func statePath(dir, gameID string) string {
	return filepath.Join(dir, gameID+".json")
}

func loadGame(dir, gameID string) (*persistedGame, error) {
	data, err := os.ReadFile(statePath(dir, gameID))
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var pg persistedGame
	if err := json.Unmarshal(data, &pg); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &pg, nil
}

func saveGame(dir string, pg *persistedGame) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(pg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return os.WriteFile(statePath(dir, pg.GameId), data, 0o644)
}

func verdictKindName(k territory.VerdictKind) string {
	switch k {
	case territory.Winner:
		return "winner"
	case territory.MultiWinner:
		return "multi_winner"
	case territory.Draw:
		return "draw"
	default:
		return "ongoing"
	}
}

func describeVerdict(v territory.Verdict) persistedVerdict {
	pv := persistedVerdict{Kind: verdictKindName(v.Kind)}
	for _, p := range v.Players {
		pv.Players = append(pv.Players, p.String())
	}
	return pv
}

func runInit(dir, gameID string, numPlayers, mapSize, maxRounds int, seed int64) error {
	if _, err := os.Stat(statePath(dir, gameID)); err == nil {
		return fmt.Errorf("game %q already exists in %s", gameID, dir)
	}

	cfg := territory.DefaultConfig()
	if mapSize > 0 {
		cfg.MapSize = mapSize
	}
	if maxRounds > 0 {
		cfg.MaxRounds = maxRounds
	}
	if seed == 0 {
		seed = rand.Int63()
	}

	rng := rand.New(rand.NewSource(seed))
	gs, err := territory.NewGame(gameID, numPlayers, cfg, rng)
	if err != nil {
		return err
	}

	round := gs.Current()
	pg := &persistedGame{
		GameId:       gs.GameId,
		Config:       gs.Config,
		NumPlayers:   gs.NumPlayers,
		CurrentRound: gs.CurrentRound,
		Verdict:      describeVerdict(gs.Verdict),
		Rounds: []persistedRound{{
			RoundNumber: round.RoundNumber,
			BoardBefore: territory.EncodeGrid(round.BoardBefore),
		}},
	}
	if err := saveGame(dir, pg); err != nil {
		return err
	}
	fmt.Printf("initialized game %q: %d players, round %d\n", gameID, numPlayers, round.RoundNumber)
	return nil
}

func runShow(dir, gameID string) error {
	pg, err := loadGame(dir, gameID)
	if err != nil {
		return err
	}
	round := pg.Rounds[len(pg.Rounds)-1]
	fmt.Printf("game %s  round %d  verdict %s\n", pg.GameId, round.RoundNumber, pg.Verdict.Kind)
	fmt.Println(round.BoardBefore)
	return nil
}

// reconstruct rebuilds an in-memory *territory.GameState for the
// current round, replaying the declarations already persisted for it
// so the driver's declaration phase counter lands where it would have
// after the original call. Orders are not replayed.
func reconstruct(pg *persistedGame) (*territory.GameState, error) {
	round := pg.Rounds[len(pg.Rounds)-1]
	board, err := territory.DecodeGrid(round.BoardBefore)
	if err != nil {
		return nil, err
	}
	gs := &territory.GameState{
		GameId:       pg.GameId,
		Config:       pg.Config,
		NumPlayers:   pg.NumPlayers,
		CurrentRound: round.RoundNumber,
		Rounds: []*territory.RoundRecord{{
			RoundNumber: round.RoundNumber,
			BoardBefore: board,
			Orders:      make([][]territory.Order, pg.NumPlayers),
		}},
		Verdict: territory.Verdict{Kind: territory.Ongoing},
	}
	if len(round.Declarations) > 0 {
		if err := gs.SubmitDeclarations(round.Declarations); err != nil {
			return nil, err
		}
	}
	return gs, nil
}

func readLines(r *os.File, n int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lines := make([]string, 0, n)
	for len(lines) < n && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(lines) != n {
		return nil, fmt.Errorf("expected %d lines, got %d", n, len(lines))
	}
	return lines, nil
}

func runDeclare(dir, gameID string, stdin *os.File) error {
	pg, err := loadGame(dir, gameID)
	if err != nil {
		return err
	}
	round := &pg.Rounds[len(pg.Rounds)-1]
	if len(round.Declarations) > 0 {
		return fmt.Errorf("round %d already has declarations", round.RoundNumber)
	}

	lines, err := readLines(stdin, pg.NumPlayers)
	if err != nil {
		return err
	}

	gs, err := reconstruct(pg)
	if err != nil {
		return err
	}
	if err := gs.SubmitDeclarations(lines); err != nil {
		return err
	}

	round.Declarations = gs.Current().Declarations
	if err := saveGame(dir, pg); err != nil {
		return err
	}
	fmt.Printf("round %d: %d declarations recorded\n", round.RoundNumber, len(lines))
	return nil
}

func runOrders(dir, gameID string, stdin *os.File) error {
	pg, err := loadGame(dir, gameID)
	if err != nil {
		return err
	}
	round := &pg.Rounds[len(pg.Rounds)-1]
	if len(round.Declarations) != pg.NumPlayers {
		return fmt.Errorf("round %d has not completed declarations", round.RoundNumber)
	}
	if len(round.Orders) > 0 {
		return fmt.Errorf("round %d already has orders", round.RoundNumber)
	}

	lines, err := readLines(stdin, pg.NumPlayers)
	if err != nil {
		return err
	}

	gs, err := reconstruct(pg)
	if err != nil {
		return err
	}
	if err := gs.SubmitOrders(lines, true); err != nil {
		return err
	}
	round.Orders = lines

	if err := gs.Resolve(); err != nil {
		return err
	}

	if gs.Verdict.IsTerminal() {
		pg.Verdict = describeVerdict(gs.Verdict)
		if err := saveGame(dir, pg); err != nil {
			return err
		}
		fmt.Printf("game %s finished: %s\n", gameID, pg.Verdict.Kind)
		return nil
	}

	next := gs.Current()
	boardAfter := territory.EncodeGrid(next.BoardBefore)
	round.BoardAfter = boardAfter
	pg.Rounds = append(pg.Rounds, persistedRound{
		RoundNumber: next.RoundNumber,
		BoardBefore: boardAfter,
	})
	pg.CurrentRound = next.RoundNumber

	if err := saveGame(dir, pg); err != nil {
		return err
	}
	fmt.Printf("round %d resolved, round %d opened\n", round.RoundNumber, next.RoundNumber)
	return nil
}

// runAdvance auto-detects which phase the current round is waiting on
// and dispatches to declare or orders+resolve (spec §6).
func runAdvance(dir, gameID string, stdin *os.File) error {
	pg, err := loadGame(dir, gameID)
	if err != nil {
		return err
	}
	round := pg.Rounds[len(pg.Rounds)-1]
	if len(round.Declarations) == 0 {
		return runDeclare(dir, gameID, stdin)
	}
	return runOrders(dir, gameID, stdin)
}
