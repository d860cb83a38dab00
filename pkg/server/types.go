package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Reload sources, used as the reloads_total source label.
const (
	SourceStartup  = "startup"
	SourceWatch    = "watch"
	SourceSchedule = "schedule"
	SourceAPI      = "api"
)

// Websocket message types
const (
	MessageHello    = "hello"
	MessageReloaded = "reloaded"
	MessageShutdown = "shutdown"
)

// RequestIDHeader carries the per-request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// EventMessage is pushed to websocket clients.
type EventMessage struct {
	Type    string    `json:"type"`
	Seq     int64     `json:"seq,omitempty"`
	Source  string    `json:"source,omitempty"`
	Events  int       `json:"events"`
	Users   int       `json:"users"`
	At      time.Time `json:"at"`
	TraceID string    `json:"trace_id,omitempty"`
}

// Stats describes the ledger currently being served.
type Stats struct {
	Events   int       `json:"events"`
	Users    int       `json:"users"`
	LoadedAt time.Time `json:"loaded_at"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// ClientInfo represents information about a connected client
type ClientInfo struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connectedAt"`
	IPAddress   string    `json:"ipAddress"`
}

// Client represents a connected websocket client. Writes are serialised
// because gorilla connections allow only one concurrent writer.
type Client struct {
	ID          string
	Conn        *websocket.Conn
	ConnectedAt time.Time
	IPAddress   string

	writeMu sync.Mutex
}

// NewClient wraps an upgraded connection.
func NewClient(id string, conn *websocket.Conn, addr string) *Client {
	return &Client{
		ID:          id,
		Conn:        conn,
		ConnectedAt: time.Now(),
		IPAddress:   addr,
	}
}

// WriteMessage writes one frame with a write deadline.
func (c *Client) WriteMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.Conn.WriteMessage(messageType, data)
}

// WriteJSON writes v as a JSON text frame.
func (c *Client) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.Conn.WriteJSON(v)
}
