package territory

import "testing"

func TestGridRoundTrip(t *testing.T) {
	board := NewBoard(3)
	board.Set(Coordinate{0, 0}, Square{Units: 7, Owner: PlayerAt(0)})
	board.Set(Coordinate{1, 1}, Square{Units: 3, Owner: PlayerAt(1), IsResource: true})

	encoded := EncodeGrid(board)
	decoded, err := DecodeGrid(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if EncodeGrid(decoded) != encoded {
		t.Fatalf("round trip mismatch:\nwant %q\ngot  %q", encoded, EncodeGrid(decoded))
	}
	for y := range board.Rows {
		for x := range board.Rows[y] {
			c := Coordinate{x, y}
			if board.At(c) != decoded.At(c) {
				t.Errorf("square %v mismatch: want %+v got %+v", c, board.At(c), decoded.At(c))
			}
		}
	}
}

func TestDecodeGridRejectsEmpty(t *testing.T) {
	for _, s := range []string{"", "   ", "\n\n"} {
		if _, err := DecodeGrid(s); err == nil {
			t.Errorf("DecodeGrid(%q): expected error, got nil", s)
		} else if e := err.(*Error); e.Kind != InvalidGridFormat {
			t.Errorf("DecodeGrid(%q): want InvalidGridFormat, got %v", s, e.Kind)
		}
	}
}

func TestDecodeGridRejectsNonSquare(t *testing.T) {
	// Two rows, but second row has only one token instead of two.
	_, err := DecodeGrid("00..|00..\n00..")
	if err == nil {
		t.Fatal("expected error for non-square input")
	}
}

func TestDecodeGridRejectsBadTokenLength(t *testing.T) {
	_, err := DecodeGrid("0..")
	if err == nil {
		t.Fatal("expected error for short token")
	}
}

func TestDecodeGridRejectsNonDecimalUnits(t *testing.T) {
	_, err := DecodeGrid("xx..")
	if err == nil {
		t.Fatal("expected error for non-decimal unit digits")
	}
}

func TestDecodeGridRejectsBadTypeMarker(t *testing.T) {
	_, err := DecodeGrid("00.x")
	if err == nil {
		t.Fatal("expected error for invalid type marker")
	}
}

func TestEncodeGridNeutralNormalization(t *testing.T) {
	// A Neutral square must always serialize with 0 units and '.'.
	board := NewBoard(1)
	board.Set(Coordinate{0, 0}, Square{Owner: Neutral, Units: 0, IsResource: true})
	got := EncodeGrid(board)
	if got != "00.+" {
		t.Fatalf("want 00.+, got %q", got)
	}
}
