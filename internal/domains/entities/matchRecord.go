package entities

import "time"

type PlayerRecord struct {
	Name string `dynamodbav:"name" json:"name"`
	Role string `dynamodbav:"role" json:"role"`
	Type string `dynamodbav:"type" json:"type"`
}

// MatchRecord is the archived outcome of one finished match.
type MatchRecord struct {
	MatchId   string         `dynamodbav:"matchId" json:"matchId"`
	RoomId    string         `dynamodbav:"roomId" json:"roomId"`
	BoardSize int            `dynamodbav:"boardSize" json:"boardSize"`
	Players   []PlayerRecord `dynamodbav:"players" json:"players"`
	Moves     string         `dynamodbav:"moves" json:"moves"`
	Winner    string         `dynamodbav:"winner" json:"winner"`
	Method    string         `dynamodbav:"method" json:"method"`
	StartedAt time.Time      `dynamodbav:"startedAt" json:"startedAt"`
	EndedAt   time.Time      `dynamodbav:"endedAt" json:"endedAt"`
}

func (r MatchRecord) Player(role string) (PlayerRecord, bool) {
	for _, p := range r.Players {
		if p.Role == role {
			return p, true
		}
	}
	return PlayerRecord{}, false
}
