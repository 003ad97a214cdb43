package territory

import "testing"

func boardWith(size int, placements map[Coordinate]Square) *Board {
	b := NewBoard(size)
	for c, sq := range placements {
		b.Set(c, sq)
	}
	return b
}

func TestEvaluateVerdictAnnihilation(t *testing.T) {
	board := NewBoard(3)
	v := evaluateVerdict(board, 3, 1, 15)
	if v.Kind != Draw {
		t.Fatalf("want Draw, got %v", v.Kind)
	}
}

func TestEvaluateVerdictDomination(t *testing.T) {
	board := boardWith(5, map[Coordinate]Square{
		{0, 0}: {Owner: PlayerAt(0), Units: 21},
		{1, 0}: {Owner: PlayerAt(1), Units: 2},
		{2, 0}: {Owner: PlayerAt(2), Units: 2},
	})
	v := evaluateVerdict(board, 3, 1, 15)
	if v.Kind != Winner || len(v.Players) != 1 || v.Players[0] != PlayerAt(0) {
		t.Fatalf("want Winner(a), got %+v", v)
	}
}

func TestEvaluateVerdictDominationTieIsOngoing(t *testing.T) {
	board := boardWith(5, map[Coordinate]Square{
		{0, 0}: {Owner: PlayerAt(0), Units: 10},
		{1, 0}: {Owner: PlayerAt(1), Units: 10},
	})
	v := evaluateVerdict(board, 2, 1, 15)
	if v.Kind != Ongoing {
		t.Fatalf("want Ongoing, got %v", v.Kind)
	}
}

func TestEvaluateVerdictTimeoutMultiWinner(t *testing.T) {
	board := boardWith(5, map[Coordinate]Square{
		{0, 0}: {Owner: PlayerAt(0), Units: 10},
		{1, 0}: {Owner: PlayerAt(1), Units: 10},
	})
	v := evaluateVerdict(board, 2, 15, 15)
	if v.Kind != MultiWinner || len(v.Players) != 2 {
		t.Fatalf("want MultiWinner with 2 players, got %+v", v)
	}
}

func TestEvaluateVerdictTimeoutSingleWinner(t *testing.T) {
	board := boardWith(5, map[Coordinate]Square{
		{0, 0}: {Owner: PlayerAt(0), Units: 10},
		{1, 0}: {Owner: PlayerAt(1), Units: 8},
	})
	v := evaluateVerdict(board, 2, 15, 15)
	if v.Kind != Winner || v.Players[0] != PlayerAt(0) {
		t.Fatalf("want Winner(a), got %+v", v)
	}
}
