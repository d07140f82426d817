package testutil

import (
	"context"
	"sync"

	"github.com/zeroechelon/outpost/internal/domain/events"
)

// InMemoryProcessedEventStore is an in-memory implementation of
// events.Repository with put-if-absent marker semantics.
type InMemoryProcessedEventStore struct {
	mu      sync.Mutex
	markers map[string]*events.ProcessedMarker
}

func NewInMemoryProcessedEventStore() *InMemoryProcessedEventStore {
	return &InMemoryProcessedEventStore{
		markers: make(map[string]*events.ProcessedMarker),
	}
}

func (s *InMemoryProcessedEventStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.markers[eventID]
	return ok, nil
}

func (s *InMemoryProcessedEventStore) MarkProcessed(ctx context.Context, marker *events.ProcessedMarker) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.markers[marker.EventID]; ok {
		return false, nil
	}
	s.markers[marker.EventID] = marker
	return true, nil
}

// HasMarker reports marker presence without going through the interface.
func (s *InMemoryProcessedEventStore) HasMarker(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.markers[eventID]
	return ok
}

func (s *InMemoryProcessedEventStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = make(map[string]*events.ProcessedMarker)
}
