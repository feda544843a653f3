package server

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/chess-vn/slgo/pkg/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxLineLength = 1024
	writeWait     = 10 * time.Second
	drainWait     = 2 * time.Second

	// Outbound slack on top of a full chat replay.
	queueSlack = 32
)

// framer reads and writes whole messages on one transport.
type framer interface {
	ReadMessage() ([]byte, error)
	WriteMessage(b []byte, deadline time.Time) error
	Close() error
	RemoteAddr() string
}

// lineFramer frames messages as newline-terminated lines.
type lineFramer struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

func newLineFramer(conn net.Conn) *lineFramer {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, maxLineLength), maxLineLength)
	return &lineFramer{conn: conn, scanner: scanner}
}

func (f *lineFramer) ReadMessage() ([]byte, error) {
	if f.scanner.Scan() {
		return f.scanner.Bytes(), nil
	}
	err := f.scanner.Err()
	switch {
	case errors.Is(err, bufio.ErrTooLong):
		return nil, fmt.Errorf("%w: limit %d bytes", ErrLineTooLong, maxLineLength)
	case err == nil:
		return nil, net.ErrClosed
	default:
		return nil, err
	}
}

func (f *lineFramer) WriteMessage(b []byte, deadline time.Time) error {
	if err := f.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	_, err := f.conn.Write(append(b, '\n'))
	return err
}

func (f *lineFramer) Close() error { return f.conn.Close() }
func (f *lineFramer) RemoteAddr() string { return f.conn.RemoteAddr().String() }

// wsFramer frames messages as one text frame each.
type wsFramer struct {
	conn *websocket.Conn
}

func newWsFramer(conn *websocket.Conn) *wsFramer {
	conn.SetReadLimit(maxLineLength)
	return &wsFramer{conn: conn}
}

func (f *wsFramer) ReadMessage() ([]byte, error) {
	_, b, err := f.conn.ReadMessage()
	if errors.Is(err, websocket.ErrReadLimit) {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrLineTooLong, maxLineLength)
	}
	return b, err
}

func (f *wsFramer) WriteMessage(b []byte, deadline time.Time) error {
	if err := f.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return f.conn.WriteMessage(websocket.TextMessage, b)
}

func (f *wsFramer) Close() error {
	_ = f.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return f.conn.Close()
}

func (f *wsFramer) RemoteAddr() string { return f.conn.RemoteAddr().String() }

// Conn is one participant connection. A reader goroutine feeds the room and
// a writer goroutine drains the outbound queue.
type Conn struct {
	id     string
	local  bool
	framer framer
	room   *Room

	mu       sync.Mutex
	queue    []Message
	maxQueue int
	closed   bool
	signal   chan struct{}

	stopped  chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newConn(f framer, room *Room, local bool) *Conn {
	return &Conn{
		id:       uuid.NewString(),
		local:    local,
		framer:   f,
		room:     room,
		maxQueue: room.config.ChatCapacity + queueSlack,
		signal:   make(chan struct{}, 1),
		stopped:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (c *Conn) ID() string { return c.id }
func (c *Conn) IsLocal() bool { return c.local }

// Start joins the room and spawns the reader and writer.
func (c *Conn) Start() {
	if err := c.room.Join(c); err != nil {
		logging.Warn("failed to join room", zap.String("conn_id", c.id), zap.Error(err))
		c.framer.Close()
		close(c.done)
		return
	}
	logging.Info("connection opened",
		zap.String("conn_id", c.id),
		zap.String("remote_address", c.framer.RemoteAddr()),
		zap.Bool("local", c.local),
	)
	go c.readLoop()
	go c.writeLoop()
}

// Deliver queues msg for the writer. Messages delivered after Stop are
// dropped. A peer that lets the queue fill up is stopped.
func (c *Conn) Deliver(msg Message) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if len(c.queue) >= c.maxQueue {
		c.mu.Unlock()
		logging.Warn("outbound queue full",
			zap.String("conn_id", c.id),
			zap.Int("queued", c.maxQueue),
			zap.Stringer("opcode", msg.Op),
		)
		c.Stop()
		return
	}
	c.queue = append(c.queue, msg)
	c.mu.Unlock()

	select {
	case c.signal <- struct{}{}:
	default:
	}
}

// Stop is idempotent. The writer flushes what is already queued, then the
// socket is closed.
func (c *Conn) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.stopped)
	})
}

// Done is closed once the socket has been closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) pop() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return Message{}, false
	}
	msg := c.queue[0]
	c.queue = c.queue[1:]
	return msg, true
}

func (c *Conn) write(msg Message, wait time.Duration) error {
	b, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	return c.framer.WriteMessage(b, time.Now().Add(wait))
}

func (c *Conn) readLoop() {
	defer func() {
		c.Stop()
		_ = c.room.Leave(c)
	}()
	for {
		b, err := c.framer.ReadMessage()
		if err != nil {
			if errors.Is(err, ErrLineTooLong) {
				c.Deliver(errorMessage(err))
			}
			logging.Info("connection closed",
				zap.String("conn_id", c.id),
				zap.String("remote_address", c.framer.RemoteAddr()),
				zap.Error(err),
			)
			return
		}
		msg, err := decodeMessage(b)
		if err != nil {
			logging.Warn("invalid message", zap.String("conn_id", c.id), zap.Error(err))
			c.Deliver(errorMessage(err))
			return
		}
		if err := c.room.Dispatch(c, msg); err != nil {
			return
		}
	}
}

func (c *Conn) writeLoop() {
	defer close(c.done)
	defer c.framer.Close()
	for {
		if msg, ok := c.pop(); ok {
			if err := c.write(msg, writeWait); err != nil {
				logging.Warn("write failed", zap.String("conn_id", c.id), zap.Error(err))
				c.Stop()
				return
			}
			continue
		}
		select {
		case <-c.signal:
		case <-c.stopped:
			for {
				msg, ok := c.pop()
				if !ok {
					return
				}
				if err := c.write(msg, drainWait); err != nil {
					return
				}
			}
		}
	}
}
