package hub

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const sendBufferSize = 32

// TextMessage matches the websocket frame opcode for text frames.
const TextMessage = 1

// Conn is the part of a websocket connection the hub uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Class string

const (
	ClassBIS Class = "bis"
	ClassSIS Class = "sis"
)

type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

type Client struct {
	Class Class

	conn Conn
	send chan []byte

	mu    sync.Mutex
	state State

	closeConn sync.Once
}

func newClient(conn Conn, class Class) *Client {
	return &Client{
		Class: class,
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		state: StateConnecting,
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) open() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateConnecting {
		c.state = StateOpen
	}
}

// trySend queues a message without blocking. It reports false if the client
// is not open or its buffer is full.
func (c *Client) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateOpen {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// close stops the writer. The connection itself is closed once the writer
// has drained.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return
	}

	c.state = StateClosed
	close(c.send)
}

func (c *Client) closeConnection() {
	c.closeConn.Do(func() {
		_ = c.conn.Close()
	})
}

func (c *Client) writePump(done chan<- struct{}) {
	defer close(done)

	for message := range c.send {
		if err := c.conn.WriteMessage(TextMessage, message); err != nil {
			log.Debug().Err(err).Str("class", string(c.Class)).Msg("Failed to write to realtime client")
			c.closeConnection()

			// Drain so close() never blocks on a full buffer
			for range c.send {
			}
			return
		}
	}
}
