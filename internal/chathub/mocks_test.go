package chathub_test

import (
	"cinesocial/backend/internal/models"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of storage.ChatStore.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UsersExist(ctx context.Context, ids ...uint) (bool, error) {
	args := m.Called(ctx, ids)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockStorage) GetChatHistory(ctx context.Context, a, b uint, limit int, before *time.Time) ([]models.ChatMessage, error) {
	args := m.Called(ctx, a, b, limit, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

// memStore is an in-memory ChatStore with the same ordering rules as Postgres.
// Every user id exists unless listed in missing.
type memStore struct {
	mu      sync.Mutex
	nextID  uint
	rows    []models.ChatMessage
	missing map[uint]bool
}

func newMemStore(missing ...uint) *memStore {
	s := &memStore{missing: map[uint]bool{}}
	for _, id := range missing {
		s.missing[id] = true
	}
	return s
}

func (s *memStore) UsersExist(_ context.Context, ids ...uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if s.missing[id] {
			return false, nil
		}
	}
	return true, nil
}

func (s *memStore) SaveChatMessage(_ context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg.ID = s.nextID
	s.rows = append(s.rows, *msg)
	return nil
}

func (s *memStore) GetChatHistory(_ context.Context, a, b uint, limit int, before *time.Time) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var match []models.ChatMessage
	for _, m := range s.rows {
		if !m.Involves(a, b) {
			continue
		}
		if before != nil && !m.Timestamp.Before(*before) {
			continue
		}
		match = append(match, m)
	}
	slices.SortFunc(match, func(x, y models.ChatMessage) int {
		switch {
		case x.Before(y):
			return 1
		case y.Before(x):
			return -1
		}
		return 0
	})
	if len(match) > limit {
		match = match[:limit]
	}
	slices.Reverse(match)
	return match, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// MockClient is a test double for chathub.Client with a buffered queue.
type MockClient struct {
	connID string
	userID uint
	send   chan models.Frame

	mu     sync.Mutex
	closed bool
}

func newMockClient(userID uint) *MockClient {
	return newMockClientWithBuffer(userID, 64)
}

func newMockClientWithBuffer(userID uint, size int) *MockClient {
	return &MockClient{
		connID: uuid.NewString(),
		userID: userID,
		send:   make(chan models.Frame, size),
	}
}

func (c *MockClient) GetConnID() string { return c.connID }
func (c *MockClient) GetUserID() uint   { return c.userID }

func (c *MockClient) Send(f models.Frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}

func (c *MockClient) Run() {}

func (c *MockClient) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *MockClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// DrainMessages returns every frame queued so far.
func (c *MockClient) DrainMessages() []models.Frame {
	var frames []models.Frame
	for {
		select {
		case f := <-c.send:
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

// framesOf filters frames by event name.
func framesOf(frames []models.Frame, event string) []models.Frame {
	var out []models.Frame
	for _, f := range frames {
		if f.Event == event {
			out = append(out, f)
		}
	}
	return out
}
