package territory

import (
	"strconv"
	"strings"
)

// unitWidth is the fixed decimal width of a serialized unit count (W
// in spec §4.1). It is chosen once per format version; this module
// targets W=2, safe for any productionCap <= 21 as described in
// spec §6.
const unitWidth = 2

// maxUnitsPerSquare is the largest unit count representable at
// unitWidth digits.
const maxUnitsPerSquare = 99

// Square is one cell of the board.
type Square struct {
	Units      int
	Owner      PlayerId
	IsResource bool
}

// Board is a mapSize x mapSize grid of squares, row-major: Rows[y][x].
type Board struct {
	Size int
	Rows [][]Square
}

// NewBoard returns an empty, all-Neutral board of the given size.
func NewBoard(size int) *Board {
	rows := make([][]Square, size)
	for y := range rows {
		row := make([]Square, size)
		for x := range row {
			row[x] = Square{Owner: Neutral}
		}
		rows[y] = row
	}
	return &Board{Size: size, Rows: rows}
}

// At returns the square at c.
func (b *Board) At(c Coordinate) Square {
	return b.Rows[c.Y][c.X]
}

// Set writes sq at c.
func (b *Board) Set(c Coordinate, sq Square) {
	b.Rows[c.Y][c.X] = sq
}

// Clone returns a deep copy of b.
func (b *Board) Clone() *Board {
	rows := make([][]Square, len(b.Rows))
	for y, row := range b.Rows {
		cp := make([]Square, len(row))
		copy(cp, row)
		rows[y] = cp
	}
	return &Board{Size: b.Size, Rows: rows}
}

// EncodeGrid serializes b per spec §4.1: rows joined by newline,
// squares within a row joined by "|", each square a fixed-width
// "NNps" token.
func EncodeGrid(b *Board) string {
	var sb strings.Builder
	for y, row := range b.Rows {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x, sq := range row {
			if x > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(encodeSquare(sq))
		}
	}
	return sb.String()
}

func encodeSquare(sq Square) string {
	owner := sq.Owner
	units := sq.Units
	if units > maxUnitsPerSquare {
		panic(&Error{Kind: Bug, Message: "unit count exceeds fixed grid codec width"})
	}
	if units == 0 {
		owner = Neutral
	}
	typ := byte('.')
	if sq.IsResource {
		typ = '+'
	}
	digits := strconv.Itoa(units)
	for len(digits) < unitWidth {
		digits = "0" + digits
	}
	return digits + owner.String() + string(typ)
}

// DecodeGrid parses a board previously produced by EncodeGrid.
// Returns an *Error of Kind InvalidGridFormat on any malformed input.
func DecodeGrid(s string) (*Board, error) {
	if strings.TrimSpace(s) == "" {
		return nil, newErr(InvalidGridFormat, "empty or whitespace-only input")
	}
	lines := strings.Split(s, "\n")
	rowCount := len(lines)
	rows := make([][]Square, rowCount)
	for y, line := range lines {
		tokens := strings.Split(line, "|")
		if len(tokens) != rowCount {
			return nil, newErr(InvalidGridFormat,
				"row %d has %d squares, expected %d (board must be square)", y, len(tokens), rowCount).
				withContext("row", y)
		}
		row := make([]Square, rowCount)
		for x, tok := range tokens {
			sq, err := decodeSquare(tok)
			if err != nil {
				e := err.(*Error)
				e.Message = "row " + strconv.Itoa(y) + " col " + strconv.Itoa(x) + ": " + e.Message
				e.withContext("row", y).withContext("col", x)
				return nil, e
			}
			row[x] = sq
		}
		rows[y] = row
	}
	return &Board{Size: rowCount, Rows: rows}, nil
}

func decodeSquare(tok string) (Square, error) {
	if len(tok) != unitWidth+2 {
		return Square{}, newErr(InvalidGridFormat,
			"token %q has length %d, expected %d", tok, len(tok), unitWidth+2)
	}
	digits := tok[:unitWidth]
	ownerByte := tok[unitWidth]
	typeByte := tok[unitWidth+1]

	units, err := strconv.Atoi(digits)
	if err != nil || units < 0 {
		return Square{}, newErr(InvalidGridFormat, "token %q has non-decimal unit count %q", tok, digits)
	}

	var isResource bool
	switch typeByte {
	case '.':
		isResource = false
	case '+':
		isResource = true
	default:
		return Square{}, newErr(InvalidGridFormat, "token %q has invalid type marker %q", tok, string(typeByte))
	}

	owner := PlayerId(ownerByte)
	if units == 0 {
		owner = Neutral
	}

	return Square{Units: units, Owner: owner, IsResource: isResource}, nil
}
