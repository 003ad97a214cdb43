package territory

import "strings"

// SubmitDeclarations appends one declaration string per player to the
// current round and advances the declaration phase counter (spec
// §4.8). lines must have exactly NumPlayers entries, ordered by
// player index. Returns a PhaseError if the current round already has
// orders, all declaration phases are already complete, or the game is
// terminal.
func (gs *GameState) SubmitDeclarations(lines []string) error {
	if gs.Verdict.IsTerminal() {
		return newErr(PhaseError, "game has reached a terminal verdict; no further phases accepted")
	}
	round := gs.Current()
	if round.ordersSubmitted {
		return newErr(PhaseError, "round %d already has orders submitted", round.RoundNumber)
	}
	if round.declarationsPhase >= gs.Config.DeclarationCount {
		return newErr(PhaseError, "round %d has completed all %d declaration phases", round.RoundNumber, gs.Config.DeclarationCount)
	}
	if len(lines) != gs.NumPlayers {
		return newErr(PhaseError, "expected %d declaration lines, got %d", gs.NumPlayers, len(lines))
	}

	for _, line := range lines {
		round.Declarations = append(round.Declarations, sanitizeDeclaration(line, gs.Config.MaxPlanLength))
	}
	round.declarationsPhase++
	return nil
}

// sanitizeDeclaration collapses internal newlines/tabs to spaces and
// truncates to maxLen (spec §4.8, §6).
func sanitizeDeclaration(s string, maxLen int) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return ' '
		}
		return r
	}, s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// SubmitOrders validates and stores each player's order line on the
// current round (spec §4.3, §4.8). lines must have exactly NumPlayers
// entries, ordered by player index. strict controls host policy on a
// per-player validation failure (spec §4.3: "the round driver may
// either reject the submission as a hard error or treat that player
// as having submitted no orders"): when strict is true, any
// validation failure aborts the whole submission with that error;
// when false, a failing player's line is silently treated as empty
// (no orders) and submission continues for the rest.
//
// Returns a PhaseError if declarations are incomplete, orders were
// already submitted this round, or the game is terminal.
func (gs *GameState) SubmitOrders(lines []string, strict bool) error {
	if gs.Verdict.IsTerminal() {
		return newErr(PhaseError, "game has reached a terminal verdict; no further phases accepted")
	}
	round := gs.Current()
	if round.declarationsPhase < gs.Config.DeclarationCount {
		return newErr(PhaseError, "round %d has not completed all %d declaration phases", round.RoundNumber, gs.Config.DeclarationCount)
	}
	if round.ordersSubmitted {
		return newErr(PhaseError, "round %d already has orders submitted", round.RoundNumber)
	}
	if len(lines) != gs.NumPlayers {
		return newErr(PhaseError, "expected %d order lines, got %d", gs.NumPlayers, len(lines))
	}

	ordersByPlayer := make([][]Order, gs.NumPlayers)
	for idx, line := range lines {
		orders, err := ParseOrderLine(line, PlayerAt(idx), round.BoardBefore, gs.Config)
		if err != nil {
			if strict {
				return err
			}
			orders = nil
		}
		ordersByPlayer[idx] = orders
	}

	round.Orders = ordersByPlayer
	round.ordersSubmitted = true
	return nil
}

// Resolve applies the movement model, combat resolver, and production
// (spec §4.4-§4.6) to the current round's orders, evaluates the
// terminal-condition oracle (§4.7), and either freezes the game or
// appends a fresh round whose BoardBefore is the post-production
// board (§4.8). Returns a PhaseError if orders have not been
// submitted yet or the game is already terminal.
func (gs *GameState) Resolve() error {
	if gs.Verdict.IsTerminal() {
		return newErr(PhaseError, "game has reached a terminal verdict; no further phases accepted")
	}
	round := gs.Current()
	if !round.ordersSubmitted {
		return newErr(PhaseError, "round %d has no orders submitted yet", round.RoundNumber)
	}

	board := round.BoardBefore
	movements := ordersToMovements(round.Orders, board)

	debited := board.Clone()
	debitSources(debited, movements)

	fought := resolveCombat(debited, movements)
	produced := applyProduction(fought, gs.Config)

	verdict := evaluateVerdict(produced, gs.NumPlayers, round.RoundNumber, gs.Config.MaxRounds)

	if verdict.IsTerminal() {
		gs.Verdict = verdict
		return nil
	}

	next := &RoundRecord{
		RoundNumber: round.RoundNumber + 1,
		Orders:      make([][]Order, gs.NumPlayers),
		BoardBefore: produced,
	}
	gs.Rounds = append(gs.Rounds, next)
	gs.CurrentRound = next.RoundNumber
	return nil
}
