package websocket

import (
	"context"
	"errors"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fran-as/millDischargeDashboard/internal/config"
	"github.com/fran-as/millDischargeDashboard/internal/infrastructure"
	"github.com/fran-as/millDischargeDashboard/internal/selector"
	"github.com/fran-as/millDischargeDashboard/pkg/contracts/events"
)

// Time allowed to write a message to the peer
const writeWait = 10 * time.Second

// sendBuffer is the number of replies queued ahead of the writer
const sendBuffer = 16

// Client is one websocket connection and the selection session it owns
type Client struct {
	hub     *Hub
	conn    Connection
	session *selector.Session
	groups  []string

	dispatcher *dispatcher

	// Buffered channel of outbound messages
	send chan []byte
	// Closed when ReadPump exits
	stop chan struct{}
	// Closed when WritePump exits
	writerDone chan struct{}

	cfg config.WebSocketConfig

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time
	reason      string

	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger
	otel   *OTelMetrics

	messagesSent     int64
	messagesReceived int64
}

// NewClient creates a client over conn. parent supplies trace values; its
// cancellation does not end the session.
func NewClient(parent context.Context, hub *Hub, conn Connection, d *dispatcher, cfg config.WebSocketConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	traceID := infrastructure.GetTraceID(parent)
	if traceID == "" {
		traceID = infrastructure.GenerateTraceID()
	}
	ctx, cancel := context.WithCancel(infrastructure.WithTraceID(context.WithoutCancel(parent), traceID))

	return &Client{
		hub:         hub,
		conn:        conn,
		session:     d.sessions.NewSession(),
		groups:      d.sessions.Groups(),
		dispatcher:  d,
		send:        make(chan []byte, sendBuffer),
		stop:        make(chan struct{}),
		writerDone:  make(chan struct{}),
		cfg:         cfg,
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		ctx:         ctx,
		cancel:      cancel,
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id),
		),
		otel: hub.otel,
	}
}

// ID is the session id sent in the connect message
func (c *Client) ID() string { return c.id }

func (c *Client) context() context.Context { return c.ctx }

func (c *Client) closeReason() string {
	if c.reason == "" {
		return "normal"
	}
	return c.reason
}

// Greet queues the connect message
func (c *Client) Greet() {
	c.reply(events.MessageTypeConnect, "", events.ConnectPayload{
		SessionID: c.id,
		Protocol:  events.ProtocolVersion,
		Groups:    c.groups,
	})
}

// ReadPump decodes commands and answers them in arrival order
func (c *Client) ReadPump() {
	defer func() {
		c.logger.InfoContext(c.ctx, "WebSocket client disconnected (readPump)",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("messages_received", c.messagesReceived))
		close(c.stop)
		c.cancel()
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)) })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.reason = "error"
				c.logger.WarnContext(c.ctx, "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		c.messagesReceived++

		start := time.Now()
		var cmd events.Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.otel.RecordMessage(c.ctx, "inbound", "invalid", len(message))
			c.replyError("", &commandError{code: codeInvalidMessage, message: "message is not a JSON command", cause: err})
			continue
		}
		c.otel.RecordMessage(c.ctx, "inbound", string(cmd.Type), len(message))

		msgType, data, err := c.dispatcher.handle(c.ctx, c.session, cmd)
		code := ""
		if err != nil {
			code = c.replyError(cmd.ID, err)
		} else {
			c.reply(msgType, cmd.ID, data)
		}
		c.otel.RecordCommand(c.ctx, string(cmd.Type), code, time.Since(start))
	}
}

// WritePump writes queued replies and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		close(c.writerDone)
		c.conn.Close()
		c.logger.DebugContext(c.ctx, "WebSocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent))
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.ctx, "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++

		case <-c.stop:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.ctx, "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

// reply encodes and queues one server message
func (c *Client) reply(msgType events.MessageType, replyTo string, data interface{}) {
	msg := events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.New().String(),
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   c.traceID,
		},
		ReplyTo: replyTo,
		Data:    data,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.ErrorContext(c.ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(msgType)))
		return
	}

	select {
	case c.send <- payload:
		c.otel.RecordMessage(c.ctx, "outbound", string(msgType), len(payload))
	case <-c.writerDone:
		c.otel.RecordDroppedMessage(c.ctx, string(msgType))
	}
}

// replyError sends err as an error message and returns its code
func (c *Client) replyError(replyTo string, err error) string {
	payload := errorPayload(err)
	level := slog.LevelDebug
	if payload.Fatal {
		level = slog.LevelWarn
	}
	c.logger.Log(c.ctx, level, "command failed",
		slog.String("code", payload.Code),
		slog.String("error", err.Error()))

	c.reply(events.MessageTypeError, replyTo, payload)
	return payload.Code
}

// commandError is a protocol-level failure with a fixed code
type commandError struct {
	code    string
	message string
	details interface{}
	cause   error
}

func (e *commandError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *commandError) Unwrap() error { return e.cause }

var errUnknownCommand = errors.New("unknown command")
