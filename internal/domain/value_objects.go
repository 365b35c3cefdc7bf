package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// SessionID - Typed identifier for practice sessions
// -----------------------------------------------------------------------------

// SessionID is a typed identifier for practice sessions
type SessionID struct {
	value uuid.UUID
}

// NewSessionIDFromString creates a SessionID from a string
func NewSessionIDFromString(s string) (SessionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return SessionID{}, fmt.Errorf("invalid session ID: %w", err)
	}
	return SessionID{value: id}, nil
}

// GenerateSessionID creates a new random SessionID
func GenerateSessionID() SessionID {
	return SessionID{value: uuid.New()}
}

// UUID returns the underlying uuid.UUID
func (id SessionID) UUID() uuid.UUID {
	return id.value
}

// String returns the string representation
func (id SessionID) String() string {
	return id.value.String()
}

// IsZero returns true if this is a zero value
func (id SessionID) IsZero() bool {
	return id.value == uuid.Nil
}

// -----------------------------------------------------------------------------
// PlayerID - Typed identifier for leaderboard players
// -----------------------------------------------------------------------------

// PlayerID is a typed identifier for players. It survives renames.
type PlayerID struct {
	value uuid.UUID
}

// NewPlayerIDFromString creates a PlayerID from a string
func NewPlayerIDFromString(s string) (PlayerID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PlayerID{}, fmt.Errorf("invalid player ID: %w", err)
	}
	return PlayerID{value: id}, nil
}

// GeneratePlayerID creates a new random PlayerID
func GeneratePlayerID() PlayerID {
	return PlayerID{value: uuid.New()}
}

// String returns the string representation
func (id PlayerID) String() string {
	return id.value.String()
}

// IsZero returns true if this is a zero value
func (id PlayerID) IsZero() bool {
	return id.value == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler
func (id PlayerID) MarshalText() ([]byte, error) {
	return id.value.MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *PlayerID) UnmarshalText(b []byte) error {
	return id.value.UnmarshalText(b)
}
