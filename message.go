package assistant

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Message is one entry of the persisted conversation log.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Persona   PersonaID
	Timestamp time.Time
}

// NewMessage creates a message with a fresh ID and the current time.
func NewMessage(role Role, content string, persona PersonaID) Message {
	now := time.Now()
	return Message{
		ID:        NewID(now),
		Role:      role,
		Content:   content,
		Persona:   persona,
		Timestamp: now,
	}
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a lexicographically sortable ULID for t. IDs generated within
// the same millisecond are strictly increasing.
func NewID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
