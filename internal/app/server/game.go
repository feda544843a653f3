package server

type (
	MatchStatus uint8
	ResultKind  uint8
	PlayerType  uint8
)

const (
	NOT_PREPARED MatchStatus = iota
	ON_GOING
	GAME_OVER
)

const (
	NO_RESULT ResultKind = iota
	WIN_BY_CAPTURE
	WIN_BY_TIMEOUT
	WIN_BY_GIVEUP
)

const (
	LOCAL_HUMAN PlayerType = iota
	REMOTE_HUMAN
)

func (s MatchStatus) String() string {
	switch s {
	case NOT_PREPARED:
		return "NOT_PREPARED"
	case ON_GOING:
		return "ON_GOING"
	case GAME_OVER:
		return "GAME_OVER"
	default:
		return "UNKNOWN"
	}
}

func (k ResultKind) String() string {
	switch k {
	case WIN_BY_CAPTURE:
		return "CAPTURE"
	case WIN_BY_TIMEOUT:
		return "TIMEOUT"
	case WIN_BY_GIVEUP:
		return "GIVEUP"
	default:
		return "NONE"
	}
}

// terminator is the suffix appended to an encoded move history.
func (k ResultKind) terminator() string {
	switch k {
	case WIN_BY_GIVEUP:
		return "G"
	case WIN_BY_TIMEOUT:
		return "T"
	default:
		return ""
	}
}

func (t PlayerType) String() string {
	switch t {
	case LOCAL_HUMAN:
		return "LOCAL_HUMAN"
	case REMOTE_HUMAN:
		return "REMOTE_HUMAN"
	default:
		return "UNKNOWN"
	}
}
