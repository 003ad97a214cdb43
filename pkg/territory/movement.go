package territory

// ordersToMovements converts a positional (by player ordinal)
// collection of validated orders into a flat Movement list (spec
// §4.4). Orders are assumed already validated against board.
func ordersToMovements(ordersByPlayer [][]Order, board *Board) []Movement {
	var movements []Movement
	for idx, orders := range ordersByPlayer {
		if len(orders) == 0 {
			continue
		}
		player := PlayerAt(idx)
		for _, o := range orders {
			to := neighbor(o.From, o.Direction)
			movements = append(movements, Movement{
				From:  o.From,
				To:    to,
				Owner: player,
				Units: o.Units,
			})
		}
	}
	return movements
}

// debitSources applies the source-debit step in place: for every
// coordinate that movements leave from, subtract the total units
// leaving across all movements, once, globally, before any
// destination arithmetic (spec §4.4). A source driven negative is an
// internal invariant violation (the validator must have prevented
// it); debitSources panics with a Bug *Error in that case, never
// returning a recoverable error.
func debitSources(board *Board, movements []Movement) {
	leaving := make(map[Coordinate]int)
	for _, m := range movements {
		leaving[m.From] += m.Units
	}
	for c, total := range leaving {
		sq := board.At(c)
		if total > sq.Units {
			panic(&Error{
				Kind:    Bug,
				Message: "source debit would drive a square negative",
				Context: map[string]any{"coordinate": c, "units": sq.Units, "debit": total},
			})
		}
		sq.Units -= total
		if sq.Units == 0 {
			sq.Owner = Neutral
		}
		board.Set(c, sq)
	}
}
