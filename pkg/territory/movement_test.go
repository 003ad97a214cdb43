package territory

import "testing"

func TestOrdersToMovements(t *testing.T) {
	board := boardWith(3, map[Coordinate]Square{{0, 0}: {Owner: PlayerAt(0), Units: 5}})
	orders := [][]Order{
		{{From: Coordinate{0, 0}, Direction: Right, Units: 3}},
		nil,
	}
	movements := ordersToMovements(orders, board)
	if len(movements) != 1 {
		t.Fatalf("want 1 movement, got %d", len(movements))
	}
	m := movements[0]
	if m.From != (Coordinate{0, 0}) || m.To != (Coordinate{1, 0}) || m.Owner != PlayerAt(0) || m.Units != 3 {
		t.Errorf("unexpected movement: %+v", m)
	}
}

func TestDebitSourcesZeroesEmptiedSquare(t *testing.T) {
	board := boardWith(3, map[Coordinate]Square{{0, 0}: {Owner: PlayerAt(0), Units: 5}})
	movements := []Movement{{From: Coordinate{0, 0}, To: Coordinate{1, 0}, Owner: PlayerAt(0), Units: 5}}
	debitSources(board, movements)
	sq := board.At(Coordinate{0, 0})
	if !sq.Owner.IsNeutral() || sq.Units != 0 {
		t.Fatalf("want Neutral/0, got %+v", sq)
	}
}

func TestDebitSourcesPartialLeavesRemainder(t *testing.T) {
	board := boardWith(3, map[Coordinate]Square{{0, 0}: {Owner: PlayerAt(0), Units: 7}})
	movements := []Movement{{From: Coordinate{0, 0}, To: Coordinate{1, 0}, Owner: PlayerAt(0), Units: 3}}
	debitSources(board, movements)
	sq := board.At(Coordinate{0, 0})
	if sq.Owner != PlayerAt(0) || sq.Units != 4 {
		t.Fatalf("want a/4, got %+v", sq)
	}
}

func TestDebitSourcesPanicsOnInvariantViolation(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on over-debit")
		}
		e, ok := r.(*Error)
		if !ok || e.Kind != Bug {
			t.Fatalf("want *Error{Kind: Bug}, got %#v", r)
		}
	}()
	board := boardWith(3, map[Coordinate]Square{{0, 0}: {Owner: PlayerAt(0), Units: 2}})
	movements := []Movement{{From: Coordinate{0, 0}, To: Coordinate{1, 0}, Owner: PlayerAt(0), Units: 5}}
	debitSources(board, movements)
}
