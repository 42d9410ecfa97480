package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	// Client to server.
	TypeChatMessage MessageType = "message"
	TypePing        MessageType = "ping"
	TypeClear       MessageType = "clear"

	// Server to client.
	TypeSystem    MessageType = "system"
	TypeThinking  MessageType = "thinking"
	TypeStream    MessageType = "stream"
	TypeAssistant MessageType = "assistant"
	TypePong      MessageType = "pong"
	TypeError     MessageType = "error"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ChatMessage carries a user utterance. UserID is optional; without it the
// exchange stays anonymous and is never committed to long-term memory.
type ChatMessage struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
	UserID  string      `json:"user_id,omitempty"`
}

type Ping struct {
	Type MessageType `json:"type"`
}

type Clear struct {
	Type MessageType `json:"type"`
}

// ServerMessage is the single outbound shape. Content is empty for pong and
// thinking frames.
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Content   string      `json:"content,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

func System(content string) ServerMessage {
	return ServerMessage{Type: TypeSystem, Content: content, Timestamp: now()}
}

func Thinking() ServerMessage {
	return ServerMessage{Type: TypeThinking}
}

func Stream(fragment string) ServerMessage {
	return ServerMessage{Type: TypeStream, Content: fragment}
}

func Assistant(content string) ServerMessage {
	return ServerMessage{Type: TypeAssistant, Content: content, Timestamp: now()}
}

func Pong() ServerMessage {
	return ServerMessage{Type: TypePong}
}

func Error(detail string) ServerMessage {
	return ServerMessage{Type: TypeError, Content: detail, Timestamp: now()}
}

func now() string {
	return time.Now().Format(time.RFC3339)
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeChatMessage:
		var msg ChatMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.Content == "" {
			return nil, errors.New("invalid message: empty content")
		}
		return msg, nil
	case TypePing:
		return Ping{Type: TypePing}, nil
	case TypeClear:
		return Clear{Type: TypeClear}, nil
	default:
		return nil, ErrUnsupportedType
	}
}
