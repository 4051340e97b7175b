package chathub_test

import (
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"

	"popin/backend/internal/models"
	"popin/backend/internal/storage"
)

// MockStorage mocks the storage methods the hub touches. The embedded
// interface panics on anything else, which is what we want in a unit test.
type MockStorage struct {
	mock.Mock
	storage.Storage
}

func (m *MockStorage) SaveMessage(msg *models.ChatMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) PublishMessage(placeID string, msg models.ChatMessage) error {
	args := m.Called(placeID, msg)
	return args.Error(0)
}

func (m *MockStorage) SubscribeMessages() *redis.PubSub {
	// No live Redis in unit tests; the hub skips the listener on nil.
	return nil
}

// MockClient is a test double for the chathub.Client interface.
type MockClient struct {
	sessionID string
	placeID   string
	Recv      chan models.ChatMessage
	closed    bool
}

func newMockClient(sessionID, placeID string) *MockClient {
	return &MockClient{
		sessionID: sessionID,
		placeID:   placeID,
		Recv:      make(chan models.ChatMessage, 10), // buffered to prevent blocking in tests
	}
}

func (c *MockClient) GetSessionID() string                      { return c.sessionID }
func (c *MockClient) GetPlaceID() string                        { return c.placeID }
func (c *MockClient) GetSendChannel() chan<- models.ChatMessage { return c.Recv }
func (c *MockClient) Run()                                      {}
func (c *MockClient) Close()                                    { c.closed = true }

// fakeGate opens rooms listed in allow, keyed "session/place".
type fakeGate struct {
	allow map[string]bool
}

func (g *fakeGate) CanJoin(sessionID, placeID string) bool {
	return g.allow[sessionID+"/"+placeID]
}
