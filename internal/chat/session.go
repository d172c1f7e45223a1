// Package chat holds the conversation about the currently selected job.
package chat

import (
	"sync"

	"github.com/jonathan/career-pilot/internal/types"
)

// Hints are the suggested opening prompts shown next to an empty conversation
var Hints = []string{
	"How should I negotiate?",
	"Interview me for this",
	"Company outlook?",
}

// Session is an append-only transcript, cleared when a different job is selected
type Session struct {
	mu       sync.RWMutex
	messages []types.ChatMessage
}

// NewSession returns an empty session
func NewSession() *Session {
	return &Session{}
}

// Append adds a message to the end of the transcript
func (s *Session) Append(role types.ChatRole, text string) types.ChatMessage {
	msg := types.ChatMessage{Role: role, Text: text}
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return msg
}

// Messages returns a copy of the transcript
func (s *Session) Messages() []types.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.ChatMessage{}, s.messages...)
}

// Len returns the number of messages
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Reset empties the transcript
func (s *Session) Reset() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
}
