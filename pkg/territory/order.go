package territory

import "strconv"

// Order is a single player-issued movement intent.
type Order struct {
	From      Coordinate
	Direction Direction
	Units     int
}

// Movement is a validated order decomposed into its mechanical effect.
type Movement struct {
	From  Coordinate
	To    Coordinate
	Owner PlayerId
	Units int
}

// Describe renders a human-readable summary of an order, in the style
// of the host's validation-error messages (spec §7: "include
// coordinates and unit counts").
func (o Order) Describe() string {
	to := neighbor(o.From, o.Direction)
	return formatCoord(o.From) + " -> " + formatCoord(to) + " (" + strconv.Itoa(o.Units) + " units)"
}

func formatCoord(c Coordinate) string {
	return "(" + strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y) + ")"
}
