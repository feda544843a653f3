package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/chess-vn/slgo/internal/domains/entities"
	"github.com/chess-vn/slgo/internal/game"
	"github.com/chess-vn/slgo/pkg/sgf"
	_ "github.com/lib/pq"
)

// Repository stores match records in a match_records table.
type Repository struct {
	db *sql.DB
}

const createMatchRecords = `CREATE TABLE IF NOT EXISTS match_records (
    match_id    TEXT PRIMARY KEY,
    room_id     TEXT NOT NULL,
    board_size  INTEGER NOT NULL,
    black_name  TEXT NOT NULL,
    white_name  TEXT NOT NULL,
    winner      TEXT NOT NULL,
    method      TEXT NOT NULL,
    moves       JSONB NOT NULL,
    sgf         TEXT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    ended_at    TIMESTAMPTZ NOT NULL,
    duration_ms BIGINT NOT NULL
)`

func NewRepository(ctx context.Context, databaseURL string) (*Repository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, createMatchRecords); err != nil {
		db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveMatchRecord upserts a finished match.
func (r *Repository) SaveMatchRecord(ctx context.Context, record entities.MatchRecord) error {
	if r == nil || r.db == nil {
		return nil
	}
	black, _ := record.Player(game.Black.String())
	white, _ := record.Player(game.White.String())
	moves, _ := json.Marshal(moveList(record.Moves))
	duration := record.EndedAt.Sub(record.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO match_records (
        match_id, room_id, board_size, black_name, white_name,
        winner, method, moves, sgf, started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
      ) ON CONFLICT (match_id) DO UPDATE SET
        room_id=EXCLUDED.room_id,
        board_size=EXCLUDED.board_size,
        black_name=EXCLUDED.black_name,
        white_name=EXCLUDED.white_name,
        winner=EXCLUDED.winner,
        method=EXCLUDED.method,
        moves=EXCLUDED.moves,
        sgf=EXCLUDED.sgf,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err := r.db.ExecContext(ctx, q,
		record.MatchId, record.RoomId, record.BoardSize,
		black.Name, white.Name,
		record.Winner, record.Method, string(moves), buildSGF(record),
		record.StartedAt, record.EndedAt, duration,
	)
	return err
}

// moveList drops the result terminator from an encoded move history.
func moveList(encoded string) []string {
	moves := []string{}
	for _, m := range strings.Fields(encoded) {
		if _, err := game.ParsePosition(m); err == nil {
			moves = append(moves, m)
		}
	}
	return moves
}

func buildSGF(record entities.MatchRecord) string {
	g := sgf.Game{
		Size:   record.BoardSize,
		Result: sgfResult(record.Winner, record.Method),
		Date:   record.EndedAt.UTC().Format("2006-01-02"),
	}
	if p, ok := record.Player(game.Black.String()); ok {
		g.BlackName = p.Name
	}
	if p, ok := record.Player(game.White.String()); ok {
		g.WhiteName = p.Name
	}
	color := sgf.Black
	for _, m := range moveList(record.Moves) {
		p, _ := game.ParsePosition(m)
		g.Moves = append(g.Moves, sgf.Move{Color: color, X: p.X, Y: p.Y})
		if color == sgf.Black {
			color = sgf.White
		} else {
			color = sgf.Black
		}
	}
	return g.String()
}

func sgfResult(winner, method string) string {
	var c sgf.Color
	switch winner {
	case game.Black.String():
		c = sgf.Black
	case game.White.String():
		c = sgf.White
	}
	switch method {
	case "GIVEUP":
		return sgf.Result(c, "R")
	case "TIMEOUT":
		return sgf.Result(c, "T")
	default:
		return sgf.Result(c, "")
	}
}
