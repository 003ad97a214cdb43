package territory

import "sort"

// force is one contender's tally at a destination square during
// combat resolution (spec §4.5 glossary: Force).
type force struct {
	owner PlayerId
	units int
}

// resolveCombat applies the combat resolver to a post-debit board and
// a flat movement list, returning a new board. isResource is
// preserved per-square across resolution; ordering across squares is
// irrelevant since each square resolves independently from the same
// forces snapshot.
func resolveCombat(board *Board, movements []Movement) *Board {
	out := board.Clone()

	type key = Coordinate
	forcesBySquare := make(map[key]map[PlayerId]int)

	ensure := func(c Coordinate) map[PlayerId]int {
		m := forcesBySquare[c]
		if m == nil {
			m = make(map[PlayerId]int)
			forcesBySquare[c] = m
		}
		return m
	}

	// Seed with the post-debit incumbent at every non-Neutral square.
	for y, row := range board.Rows {
		for x, sq := range row {
			if sq.Owner.IsNeutral() {
				continue
			}
			c := Coordinate{X: x, Y: y}
			ensure(c)[sq.Owner] += sq.Units
		}
	}

	// Add each movement's contribution to its destination.
	for _, m := range movements {
		ensure(m.To)[m.Owner] += m.Units
	}

	for c, forces := range forcesBySquare {
		out.Set(c, resolveSquare(forces, board.At(c).IsResource))
	}

	return out
}

// resolveSquare applies the tie-break rule of spec §4.5 to one
// destination's forces map.
func resolveSquare(forces map[PlayerId]int, isResource bool) Square {
	if len(forces) == 0 {
		return Square{Owner: Neutral, IsResource: isResource}
	}
	if len(forces) == 1 {
		for owner, units := range forces {
			return Square{Owner: owner, Units: units, IsResource: isResource}
		}
	}

	ranked := make([]force, 0, len(forces))
	for owner, units := range forces {
		ranked = append(ranked, force{owner: owner, units: units})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].units != ranked[j].units {
			return ranked[i].units > ranked[j].units
		}
		return ranked[i].owner < ranked[j].owner
	})

	top1, top2 := ranked[0], ranked[1]
	if top1.units > top2.units {
		return Square{Owner: top1.owner, Units: top1.units - top2.units, IsResource: isResource}
	}
	return Square{Owner: Neutral, IsResource: isResource}
}
