package territory

import "testing"

func TestProductionCapExactBoundary(t *testing.T) {
	cfg := DefaultConfig() // baseProduction=1, resourceProduction=2, productionCap=21
	board := NewBoard(1)

	board.Set(Coordinate{0, 0}, Square{Owner: PlayerAt(0), Units: 20})
	out := applyProduction(board, cfg)
	if got := out.At(Coordinate{0, 0}).Units; got != 21 {
		t.Errorf("20 normal -> want 21, got %d", got)
	}

	board.Set(Coordinate{0, 0}, Square{Owner: PlayerAt(0), Units: 21})
	out = applyProduction(board, cfg)
	if got := out.At(Coordinate{0, 0}).Units; got != 21 {
		t.Errorf("21 at cap -> want unchanged 21, got %d", got)
	}

	board.Set(Coordinate{0, 0}, Square{Owner: PlayerAt(0), Units: 20, IsResource: true})
	out = applyProduction(board, cfg)
	if got := out.At(Coordinate{0, 0}).Units; got != 22 {
		t.Errorf("20 resource -> want 22 (threshold, not clamp), got %d", got)
	}
}

func TestProductionNeutralNeverProduces(t *testing.T) {
	cfg := DefaultConfig()
	board := NewBoard(1)
	board.Set(Coordinate{0, 0}, Square{Owner: Neutral, Units: 0})
	out := applyProduction(board, cfg)
	if got := out.At(Coordinate{0, 0}).Units; got != 0 {
		t.Errorf("Neutral square produced: got %d units", got)
	}
}
