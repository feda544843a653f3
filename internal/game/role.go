package game

// Role is the colour a player places. Opponent is plain negation.
type Role int8

const (
	White Role = -1
	None  Role = 0
	Black Role = 1
)

func (r Role) Opponent() Role { return -r }

func (r Role) String() string {
	switch r {
	case Black:
		return "BLACK"
	case White:
		return "WHITE"
	default:
		return "NONE"
	}
}

// Symbol is the single-letter form used on the wire.
func (r Role) Symbol() string {
	switch r {
	case Black:
		return "b"
	case White:
		return "w"
	default:
		return ""
	}
}

// ParseRole maps "b" and "w" to their roles. Anything else is None.
func ParseRole(s string) Role {
	switch s {
	case "b":
		return Black
	case "w":
		return White
	default:
		return None
	}
}
