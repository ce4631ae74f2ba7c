package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// SignalIDGenerator hands out identifiers for recorded signals within one run.
type SignalIDGenerator interface {
	Next() string
}

// SignalIDFactory creates a fresh generator for every run.
type SignalIDFactory func() SignalIDGenerator

// SequentialSignalIDs numbers signals signal-1, signal-2, ... within a run.
type SequentialSignalIDs struct {
	counter int
}

func NewSequentialSignalIDs() SignalIDGenerator {
	return &SequentialSignalIDs{}
}

func (s *SequentialSignalIDs) Next() string {
	s.counter++

	return fmt.Sprintf("signal-%d", s.counter)
}

// UUIDSignalIDs gives every signal a random UUID.
type UUIDSignalIDs struct{}

func NewUUIDSignalIDs() SignalIDGenerator {
	return UUIDSignalIDs{}
}

func (UUIDSignalIDs) Next() string {
	return uuid.New().String()
}
