// Package events contains the message contracts of the websocket selection
// protocol.
package events

import (
	"time"
)

// ProtocolVersion is sent in the connect message.
const ProtocolVersion = "1.0"

// MessageType defines the type of WebSocket message
type MessageType string

// Client commands
const (
	CommandLoad        MessageType = "load"
	CommandSelectGroup MessageType = "select_group"
	CommandSetRange    MessageType = "set_range"
	CommandSetColumns  MessageType = "set_columns"
	CommandSetPair     MessageType = "set_pair"
	CommandSeries      MessageType = "series"
	CommandScatter     MessageType = "scatter"
	CommandState       MessageType = "state"
)

// Server messages
const (
	MessageTypeConnect MessageType = "connect"
	MessageTypeState   MessageType = "state"
	MessageTypeSeries  MessageType = "series"
	MessageTypeScatter MessageType = "scatter"
	MessageTypeError   MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage is a server message with its payload.
type WebSocketMessage struct {
	BaseMessage
	ReplyTo string      `json:"reply_to,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Command is a client request. Which fields apply depends on Type.
type Command struct {
	ID      string      `json:"id,omitempty" validate:"omitempty,max=64"`
	Type    MessageType `json:"type" validate:"required,oneof=load select_group set_range set_columns set_pair series scatter state"`
	Group   string      `json:"group,omitempty" validate:"required_if=Type select_group"`
	Start   string      `json:"start,omitempty" validate:"omitempty,timestamp"`
	End     string      `json:"end,omitempty" validate:"omitempty,timestamp"`
	Columns []string    `json:"columns,omitempty" validate:"omitempty,max=10,dive,required,column"`
	X       string      `json:"x,omitempty" validate:"required_if=Type set_pair,omitempty,column"`
	Y       string      `json:"y,omitempty" validate:"required_if=Type set_pair,omitempty,column"`
}

// ErrorPayload is the data of an error message.
type ErrorPayload struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Fatal   bool        `json:"fatal"`
}

// ConnectPayload is the data of the connect message.
type ConnectPayload struct {
	SessionID string   `json:"session_id"`
	Protocol  string   `json:"protocol"`
	Groups    []string `json:"groups"`
}
