package test

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

// MessageReaderStub replays queued messages and records commits.
// FetchMessage blocks on an empty queue until the context is cancelled.
type MessageReaderStub struct {
	mu        sync.Mutex
	queue     chan kafka.Message
	FetchErrs []error
	CommitErr error
	Committed []kafka.Message
	Closed    bool
	commits   chan kafka.Message
}

// NewMessageReaderStub preloads msgs into the reader queue.
func NewMessageReaderStub(msgs ...kafka.Message) *MessageReaderStub {
	s := &MessageReaderStub{
		queue:   make(chan kafka.Message, len(msgs)+16),
		commits: make(chan kafka.Message, len(msgs)+16),
	}
	for _, m := range msgs {
		s.queue <- m
	}
	return s
}

// Push enqueues another message.
func (s *MessageReaderStub) Push(msg kafka.Message) {
	s.queue <- msg
}

func (s *MessageReaderStub) FetchMessage(ctx context.Context) (kafka.Message, error) {
	s.mu.Lock()
	if len(s.FetchErrs) > 0 {
		err := s.FetchErrs[0]
		s.FetchErrs = s.FetchErrs[1:]
		s.mu.Unlock()
		return kafka.Message{}, err
	}
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case msg := <-s.queue:
		return msg, nil
	}
}

func (s *MessageReaderStub) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	s.mu.Lock()
	err := s.CommitErr
	if err == nil {
		s.Committed = append(s.Committed, msgs...)
	}
	s.mu.Unlock()

	for _, m := range msgs {
		select {
		case s.commits <- m:
		default:
		}
	}
	return err
}

func (s *MessageReaderStub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// Commits signals every CommitMessages attempt.
func (s *MessageReaderStub) Commits() <-chan kafka.Message {
	return s.commits
}

// CommittedOffsets returns offsets committed so far.
func (s *MessageReaderStub) CommittedOffsets() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	offsets := make([]int64, 0, len(s.Committed))
	for _, m := range s.Committed {
		offsets = append(offsets, m.Offset)
	}
	return offsets
}

// IsClosed reports whether Close was called.
func (s *MessageReaderStub) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Closed
}
