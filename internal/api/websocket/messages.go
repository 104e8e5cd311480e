package websocket

import (
	"time"

	"github.com/openmill/auxio/internal/channel"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Channel messages
	MessageTypeChannelState MessageType = "channel_state"

	// Motion queue messages
	MessageTypeMotionQueued MessageType = "motion_queued"
	MessageTypeMotionIdle   MessageType = "motion_idle"

	// System messages
	MessageTypeSystemStatus MessageType = "system_status"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// MotionQueueData describes the motion backlog.
type MotionQueueData struct {
	SegmentID string `json:"segment_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Depth     int    `json:"depth"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewChannelStateMessage(status channel.Status) Message {
	return NewMessage(MessageTypeChannelState, status)
}

func NewMotionQueuedMessage(segmentID, name string, depth int) Message {
	return NewMessage(MessageTypeMotionQueued, MotionQueueData{
		SegmentID: segmentID,
		Name:      name,
		Depth:     depth,
	})
}
