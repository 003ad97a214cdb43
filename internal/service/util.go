package service

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// parseRoundDuration converts a stored round_duration value -- either a
// Go duration string ("24h") or a PostgreSQL interval readback
// ("24:00:00" or "24 hours") -- to a time.Duration. Unrecognized input
// falls back to 24 hours, matching spec §9's default.
func parseRoundDuration(s string) time.Duration {
	if d, err := time.ParseDuration(strings.ReplaceAll(s, " ", "")); err == nil {
		return d
	}
	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) == 3 {
			h, e1 := strconv.Atoi(parts[0])
			m, e2 := strconv.Atoi(parts[1])
			sec, e3 := strconv.Atoi(parts[2])
			if e1 == nil && e2 == nil && e3 == nil {
				return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
			}
		}
	}
	fields := strings.Fields(s)
	if len(fields) == 2 {
		if n, err := strconv.Atoi(fields[0]); err == nil {
			switch {
			case strings.HasPrefix(fields[1], "hour"):
				return time.Duration(n) * time.Hour
			case strings.HasPrefix(fields[1], "minute"):
				return time.Duration(n) * time.Minute
			case strings.HasPrefix(fields[1], "second"):
				return time.Duration(n) * time.Second
			}
		}
	}
	return 24 * time.Hour
}

// roundDeadline returns the advisory deadline for a round starting now.
func roundDeadline(roundDuration string) time.Time {
	return time.Now().Add(parseRoundDuration(roundDuration))
}

// gameStateSnapshot is the cached live-display payload: current round
// number and the board as it stands right now (pre- or post-orders,
// whichever was last written).
type gameStateSnapshot struct {
	RoundNumber int    `json:"round_number"`
	Board       string `json:"board"`
	Verdict     string `json:"verdict,omitempty"`
}

func stateJSON(roundNumber int, board, verdict string) json.RawMessage {
	data, _ := json.Marshal(gameStateSnapshot{RoundNumber: roundNumber, Board: board, Verdict: verdict})
	return data
}
