package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/chess-vn/slgo/internal/archive"
	"github.com/chess-vn/slgo/internal/domains/dtos"
	"github.com/chess-vn/slgo/internal/domains/entities"
	"github.com/chess-vn/slgo/pkg/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RecordArchive stores finished matches and lists a room's recent ones.
type RecordArchive interface {
	archive.Sink
	RecentMatchRecords(ctx context.Context, roomId string, limit int64) ([]entities.MatchRecord, error)
}

type server struct {
	config   Config
	upgrader websocket.Upgrader
	sink     RecordArchive

	mu    sync.Mutex
	rooms []*Room

	archiving sync.WaitGroup
}

func NewServer(config Config, sink RecordArchive) *server {
	return &server{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  maxLineLength,
			WriteBufferSize: maxLineLength,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		sink: sink,
	}
}

// Start opens one room per configured listener and serves until ctx is done
// or a listener fails. It returns once rooms are stopped and pending archive
// writes have finished.
func (s *server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, len(s.config.Listeners))

	for _, l := range s.config.Listeners {
		room := NewRoom(s.config.roomConfig(l), s.handleEndGame)
		s.mu.Lock()
		s.rooms = append(s.rooms, room)
		s.mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			room.Run(ctx)
		}()

		var err error
		switch l.Transport {
		case TransportWebSocket:
			err = s.listenWebSocket(ctx, &wg, l, room, errCh)
		default:
			err = s.listenTCP(ctx, &wg, l, room, errCh)
		}
		if err != nil {
			cancel()
			wg.Wait()
			s.archiving.Wait()
			return err
		}
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	cancel()
	wg.Wait()
	s.archiving.Wait()
	return err
}

func (s *server) listenTCP(ctx context.Context, wg *sync.WaitGroup, l ListenerConfig, room *Room, errCh chan<- error) error {
	ln, err := net.Listen("tcp", l.Address)
	if err != nil {
		return err
	}
	logging.Info("tcp listener started",
		zap.String("address", ln.Addr().String()),
		zap.String("room_id", room.ID()),
		zap.Bool("local", l.Local),
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		ln.Close()
	}()
	go func() {
		defer wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
					errCh <- err
				}
				return
			}
			newConn(newLineFramer(conn), room, l.Local).Start()
		}
	}()
	return nil
}

func (s *server) listenWebSocket(ctx context.Context, wg *sync.WaitGroup, l ListenerConfig, room *Room, errCh chan<- error) error {
	ln, err := net.Listen("tcp", l.Address)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.routes(room, l.Local),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logging.Info("websocket listener started",
		zap.String("address", ln.Addr().String()),
		zap.String("path", s.config.WebSocketPath),
		zap.String("room_id", room.ID()),
		zap.Bool("local", l.Local),
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	go func() {
		defer wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return nil
}

func (s *server) routes(room *Room, local bool) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.config.WebSocketPath, func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Error("failed to upgrade connection", zap.Error(err))
			return
		}
		newConn(newWsFramer(conn), room, local).Start()
	})
	mux.HandleFunc("GET /records", s.handleRecentRecords(room))
	return mux
}

func (s *server) handleRecentRecords(room *Room) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.sink == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		limit := int64(10)
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}
		records, err := s.sink.RecentMatchRecords(r.Context(), room.ID(), limit)
		if errors.Is(err, archive.ErrNoRecentStore) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err != nil {
			logging.Error("failed to list match records", zap.String("room_id", room.ID()), zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dtos.MatchRecordListResponseFromEntities(records))
	}
}
