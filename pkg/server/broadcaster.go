package server

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// EventBroadcaster pushes messages to every connected client
type EventBroadcaster struct {
	clients *ClientRegistry
	logger  zerolog.Logger
	seq     uint64
}

// NewEventBroadcaster creates a new event broadcaster
func NewEventBroadcaster(clients *ClientRegistry, logger zerolog.Logger) *EventBroadcaster {
	return &EventBroadcaster{
		clients: clients,
		logger:  logger,
	}
}

// Broadcast stamps msg with a sequence number and time, then sends it to all
// clients. It returns the number of clients reached.
func (b *EventBroadcaster) Broadcast(msg EventMessage) int {
	msg.Seq = b.nextSeq()
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("type", msg.Type).
			Int64("seq", msg.Seq).
			Msg("Failed to marshal event")
		return 0
	}

	clients := b.clients.Snapshot()
	if len(clients) == 0 {
		b.logger.Debug().
			Str("type", msg.Type).
			Int64("seq", msg.Seq).
			Msg("No clients to broadcast to")
		return 0
	}

	successCount := 0
	failureCount := 0
	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			b.logger.Warn().
				Err(err).
				Str("clientId", client.ID).
				Str("type", msg.Type).
				Int64("seq", msg.Seq).
				Msg("Failed to broadcast to client")
			failureCount++
			continue
		}
		successCount++
	}

	b.logger.Debug().
		Str("type", msg.Type).
		Int64("seq", msg.Seq).
		Int("success", successCount).
		Int("failed", failureCount).
		Msg("Event broadcast complete")

	return successCount
}

func (b *EventBroadcaster) nextSeq() int64 {
	return int64(atomic.AddUint64(&b.seq, 1))
}
