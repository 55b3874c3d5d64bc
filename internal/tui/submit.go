package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNotBound is returned by Submit before the program is attached.
var ErrNotBound = errors.New("submitter not bound to a program")

type submittedMsg struct {
	word string
}

// Submitter delivers engine submissions to the running program as messages,
// standing in for the game's input box.
type Submitter struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewSubmitter returns an unbound submitter.
func NewSubmitter() *Submitter {
	return &Submitter{}
}

// Bind attaches the submitter to a program's Send.
func (s *Submitter) Bind(send func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = send
}

// Submit implements engine.Submitter.
func (s *Submitter) Submit(ctx context.Context, word string) error {
	s.mu.Lock()
	send := s.send
	s.mu.Unlock()
	if send == nil {
		return ErrNotBound
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	send(submittedMsg{word: word})
	return nil
}
