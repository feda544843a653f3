package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoom(t *testing.T) *Room {
	t.Helper()
	room := NewRoom(testConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go room.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-room.done
	})
	return room
}

type pipeClient struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func dialPipe(t *testing.T, room *Room, local bool) (*pipeClient, *Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })
	c := newConn(newLineFramer(server), room, local)
	c.Start()
	return &pipeClient{t: t, conn: client, reader: bufio.NewReader(client)}, c
}

func (p *pipeClient) send(line string) {
	p.t.Helper()
	p.conn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err := p.conn.Write([]byte(line + "\n"))
	require.NoError(p.t, err)
}

func (p *pipeClient) recv() Message {
	p.t.Helper()
	p.conn.SetReadDeadline(time.Now().Add(time.Second))
	line, err := p.reader.ReadString('\n')
	require.NoError(p.t, err)
	msg, err := decodeMessage([]byte(strings.TrimSuffix(line, "\n")))
	require.NoError(p.t, err)
	return msg
}

func (p *pipeClient) expectClosed() {
	p.t.Helper()
	p.conn.SetReadDeadline(time.Now().Add(time.Second))
	_, err := p.reader.ReadString('\n')
	assert.ErrorIs(p.t, err, io.EOF)
}

func TestConnChatRoundTrip(t *testing.T) {
	room := runRoom(t)
	alice, _ := dialPipe(t, room, false)
	bob, _ := dialPipe(t, room, false)

	alice.send(`{"op":"CHAT","data1":"hello"}`)
	assert.Equal(t, Message{Op: CHAT, Data1: "hello"}, alice.recv())
	assert.Equal(t, Message{Op: CHAT, Data1: "hello"}, bob.recv())
}

func TestConnLocalGameSnapshot(t *testing.T) {
	room := runRoom(t)
	local, c := dialPipe(t, room, true)
	assert.True(t, c.IsLocal())

	local.send(`{"op":"START_LOCAL_GAME"}`)
	msg := local.recv()
	assert.True(t, decodeUIState(t, msg).IsGaming)
}

func TestConnMalformedMessage(t *testing.T) {
	room := runRoom(t)
	client, c := dialPipe(t, room, false)

	client.send(`{"op":`)
	msg := client.recv()
	assert.Equal(t, ERROR, msg.Op)
	assert.Equal(t, ErrStatusInvalidMessage, msg.Data1)
	client.expectClosed()
	<-c.Done()
}

func TestConnLineTooLong(t *testing.T) {
	room := runRoom(t)
	client, c := dialPipe(t, room, false)

	go client.conn.Write([]byte(strings.Repeat("x", 2*maxLineLength)))
	msg := client.recv()
	assert.Equal(t, ERROR, msg.Op)
	assert.Equal(t, ErrStatusInvalidMessage, msg.Data1)
	<-c.Done()
}

func TestConnRejectedActionDisconnects(t *testing.T) {
	room := runRoom(t)
	client, c := dialPipe(t, room, false)

	client.send(`{"op":"MOVE","data1":"C3"}`)
	msg := client.recv()
	assert.Equal(t, Message{Op: ERROR, Data1: ErrStatusWrongStatus, Data2: msg.Data2}, msg)
	client.expectClosed()
	<-c.Done()
}

func TestConnStopDrainsQueue(t *testing.T) {
	room := runRoom(t)
	client, c := dialPipe(t, room, false)

	go func() {
		c.Deliver(Message{Op: CHAT, Data1: "one"})
		c.Deliver(Message{Op: CHAT, Data1: "two"})
		c.Stop()
		c.Stop()
		c.Deliver(Message{Op: CHAT, Data1: "dropped"})
	}()
	assert.Equal(t, "one", client.recv().Data1)
	assert.Equal(t, "two", client.recv().Data1)
	client.expectClosed()

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("connection not closed")
	}
}

func TestConnClientHangUp(t *testing.T) {
	room := runRoom(t)
	client, c := dialPipe(t, room, false)
	client.conn.Close()

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("connection not closed")
	}
}

func TestConnQueueOverflowStops(t *testing.T) {
	room := NewRoom(RoomConfig{ChatCapacity: 4}, nil)
	server, client := net.Pipe()
	defer client.Close()
	c := newConn(newLineFramer(server), room, false)
	require.Equal(t, 4+queueSlack, c.maxQueue)

	for i := 0; i < c.maxQueue; i++ {
		c.Deliver(Message{Op: CHAT, Data1: fmt.Sprint(i)})
	}
	select {
	case <-c.stopped:
		t.Fatal("stopped before the queue was full")
	default:
	}

	c.Deliver(Message{Op: CHAT, Data1: "overflow"})
	select {
	case <-c.stopped:
	default:
		t.Fatal("overflow did not stop the connection")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(t, c.queue, c.maxQueue)
	assert.Equal(t, "0", c.queue[0].Data1)
}
