// Package broadcast holds the shared broadcast-feed state consumed by remote
// viewers. It is an explicit dependency handed to whoever needs it, not
// ambient process state.
package broadcast

import (
	"sync"
	"time"
)

type Feed struct {
	IsActive  bool                   `json:"is_active"`
	Mode      string                 `json:"mode"`
	Payload   map[string]interface{} `json:"payload"`
	UpdatedAt string                 `json:"updated_at"`
}

type State struct {
	mu   sync.Mutex
	feed Feed
}

func NewState() *State {
	return &State{feed: Feed{
		Mode:      "Idle",
		Payload:   map[string]interface{}{},
		UpdatedAt: time.Now().Format("2006-01-02 15:04:05"),
	}}
}

func (s *State) Snapshot() Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed
}

func (s *State) Update(isActive bool, mode string, payload map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == "" {
		mode = "Idle"
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	s.feed = Feed{
		IsActive:  isActive,
		Mode:      mode,
		Payload:   payload,
		UpdatedAt: time.Now().Format("2006-01-02 15:04:05"),
	}
}
