package dtos

import (
	"strings"
	"time"

	"github.com/chess-vn/slgo/internal/domains/entities"
)

type MatchRecordRequest struct {
	MatchId   string                `json:"matchId"`
	RoomId    string                `json:"roomId"`
	BoardSize int                   `json:"boardSize"`
	Players   []PlayerRecordRequest `json:"players"`
	Moves     string                `json:"moves"`
	Winner    string                `json:"winner"`
	Method    string                `json:"method"`
	StartedAt time.Time             `json:"startedAt"`
	EndedAt   time.Time             `json:"endedAt"`
}

type PlayerRecordRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
	Type string `json:"type"`
}

type MatchRecordResponse struct {
	MatchId  string   `json:"matchId"`
	Players  []string `json:"players"`
	Moves    []string `json:"moves"`
	Winner   string   `json:"winner"`
	Method   string   `json:"method"`
	Duration string   `json:"duration"`
}

func MatchRecordRequestFromEntity(record entities.MatchRecord) MatchRecordRequest {
	players := make([]PlayerRecordRequest, 0, len(record.Players))
	for _, p := range record.Players {
		players = append(players, PlayerRecordRequest{
			Name: p.Name,
			Role: p.Role,
			Type: p.Type,
		})
	}
	return MatchRecordRequest{
		MatchId:   record.MatchId,
		RoomId:    record.RoomId,
		BoardSize: record.BoardSize,
		Players:   players,
		Moves:     record.Moves,
		Winner:    record.Winner,
		Method:    record.Method,
		StartedAt: record.StartedAt,
		EndedAt:   record.EndedAt,
	}
}

func MatchRecordRequestToEntity(req MatchRecordRequest) entities.MatchRecord {
	players := make([]entities.PlayerRecord, 0, len(req.Players))
	for _, p := range req.Players {
		players = append(players, entities.PlayerRecord{
			Name: p.Name,
			Role: p.Role,
			Type: p.Type,
		})
	}
	return entities.MatchRecord{
		MatchId:   req.MatchId,
		RoomId:    req.RoomId,
		BoardSize: req.BoardSize,
		Players:   players,
		Moves:     req.Moves,
		Winner:    req.Winner,
		Method:    req.Method,
		StartedAt: req.StartedAt,
		EndedAt:   req.EndedAt,
	}
}

func MatchRecordResponseFromEntity(record entities.MatchRecord) MatchRecordResponse {
	players := make([]string, 0, len(record.Players))
	for _, p := range record.Players {
		players = append(players, p.Name)
	}
	var moves []string
	for _, m := range strings.Fields(record.Moves) {
		if m != "G" && m != "T" {
			moves = append(moves, m)
		}
	}
	return MatchRecordResponse{
		MatchId:  record.MatchId,
		Players:  players,
		Moves:    moves,
		Winner:   record.Winner,
		Method:   record.Method,
		Duration: record.EndedAt.Sub(record.StartedAt).String(),
	}
}

type MatchRecordListResponse struct {
	Items         []MatchRecordResponse     `json:"items"`
	NextPageToken *NextMatchRecordPageToken `json:"nextPageToken"`
}

type NextMatchRecordPageToken struct {
	MatchId string `json:"matchId"`
	EndedAt string `json:"endedAt"`
}

func MatchRecordListResponseFromEntities(records []entities.MatchRecord) MatchRecordListResponse {
	items := make([]MatchRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, MatchRecordResponseFromEntity(record))
	}
	return MatchRecordListResponse{Items: items}
}
