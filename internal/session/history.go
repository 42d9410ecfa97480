package session

import "sync"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultWindow is the number of recent turns kept per session.
const DefaultWindow = 20

// Turn is one message exchange unit in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History maintains a bounded, ordered, per-session turn log. Sessions are
// created lazily on first access, live for the process lifetime and are
// removed only by an explicit Clear. Only the most recent window turns are
// ever visible.
type History struct {
	mu       sync.Mutex
	window   int
	sessions map[string][]Turn
}

func NewHistory(window int) *History {
	if window <= 0 {
		window = DefaultWindow
	}
	return &History{
		window:   window,
		sessions: make(map[string][]Turn),
	}
}

// Append adds a turn to the session. Roles other than user/assistant are
// silently ignored. When the log exceeds the window, the oldest turns are
// dropped.
func (h *History) Append(sessionID, role, content string) {
	if role != RoleUser && role != RoleAssistant {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	turns := append(h.sessions[sessionID], Turn{Role: role, Content: content})
	if len(turns) > h.window {
		turns = turns[len(turns)-h.window:]
	}
	h.sessions[sessionID] = turns
}

// Get returns a copy of the session's current window, creating an empty
// session on first access.
func (h *History) Get(sessionID string) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	turns, ok := h.sessions[sessionID]
	if !ok {
		h.sessions[sessionID] = nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Clear removes the session entirely; a no-op if the session does not exist.
func (h *History) Clear(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sessionID)
}

// Len reports how many sessions currently exist.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
