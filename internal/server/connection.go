package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/rpsplus/internal/narrate"
	"github.com/lox/rpsplus/internal/referee"
)

// Connection is one websocket play session. It owns at most one current match.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	matchID   string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	referee   *referee.Service
}

// NewConnection creates a new connection wrapper. The connection ends when
// parent is cancelled.
func NewConnection(parent context.Context, conn *websocket.Conn, logger *log.Logger, svc *referee.Service) *Connection {
	ctx, cancel := context.WithCancel(parent)

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 64),
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
		referee: svc,
	}
}

// Start begins handling the connection and greets the client
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()

	c.reply(MessageTypeWelcome, WelcomeData{Rules: narrate.Rules})
}

// Done is closed when the connection ends
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

var ErrConnectionClosed = errors.New("connection closed")

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// MatchID returns the current match, if any
func (c *Connection) MatchID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matchID
}

func (c *Connection) setMatch(id string) (previous string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous, c.matchID = c.matchID, id
	return previous
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "match", c.MatchID())

	switch msg.Type {
	case MessageTypeNewMatch:
		c.handleNewMatch()

	case MessageTypePlay:
		var data PlayData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse play data")
			return
		}
		c.handlePlay(data)

	case MessageTypeState:
		c.handleState()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	c.reply(MessageTypeError, ErrorData{Code: code, Message: message})
}

func (c *Connection) reply(messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	_ = c.SendMessage(msg) // Ignore send errors on a closing connection
}

func (c *Connection) handleNewMatch() {
	m, err := c.referee.Create()
	if err != nil {
		if errors.Is(err, referee.ErrTooManyMatches) {
			c.sendError("too_many_matches", "The server is busy. Try again later.")
			return
		}
		c.sendError("create_failed", err.Error())
		return
	}

	if previous := c.setMatch(m.ID); previous != "" {
		_ = c.referee.Delete(previous) // Replaced matches are dropped
	}

	c.logger.Info("Match started", "match", m.ID)
	c.reply(MessageTypeMatchStarted, MatchStartedData{ID: m.ID, State: StateFromGame(m.State)})
}

func (c *Connection) handlePlay(data PlayData) {
	id := c.MatchID()
	if id == "" {
		c.sendError("no_match", "Send new_match to start a match first")
		return
	}
	if strings.TrimSpace(data.Input) == "" {
		c.sendError("empty_input", narrate.EmptyInputPrompt)
		return
	}

	m, result, err := c.referee.PlayTurn(id, data.Input)
	if err != nil {
		c.matchLost(id, err)
		return
	}
	c.reply(MessageTypeTurnResult, TurnResultFromGame(m, result))
}

func (c *Connection) handleState() {
	id := c.MatchID()
	if id == "" {
		c.sendError("no_match", "Send new_match to start a match first")
		return
	}

	m, err := c.referee.Get(id)
	if err != nil {
		c.matchLost(id, err)
		return
	}
	c.reply(MessageTypeMatchState, MatchStateData{ID: m.ID, State: StateFromGame(m.State)})
}

func (c *Connection) matchLost(id string, err error) {
	if errors.Is(err, referee.ErrMatchNotFound) {
		c.setMatch("")
		c.sendError("match_not_found", "Your match expired. Send new_match to play again.")
		return
	}
	c.logger.Error("Turn failed", "match", id, "error", err)
	c.sendError("turn_failed", err.Error())
}
