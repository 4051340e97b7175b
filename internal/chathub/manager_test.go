package chathub_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"popin/backend/internal/chathub"
	"popin/backend/internal/models"
)

func TestHub_RegisterUnregister(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewHub(storageMock, nil, nil)

	clientA := newMockClient("session-a", "place-1")

	go hub.Run()

	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, hub.Clients, "session-a")

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, hub.Clients, "session-a")
}

func TestHub_RegisterClosesDisplacedClient(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewHub(storageMock, nil, nil)

	first := newMockClient("session-a", "place-1")
	second := newMockClient("session-a", "place-2")

	go hub.Run()

	hub.RegisterCh <- first
	hub.RegisterCh <- second
	time.Sleep(100 * time.Millisecond)

	assert.True(t, first.closed, "displaced connection must be closed")
	assert.False(t, second.closed)
	assert.Same(t, second, hub.Clients["session-a"])
}

func TestHub_IncomingMessageInRange(t *testing.T) {
	storageMock := new(MockStorage)
	gate := &fakeGate{allow: map[string]bool{"session-a/place-1": true}}
	hub := chathub.NewHub(storageMock, gate, nil)

	storageMock.On("SaveMessage", mock.AnythingOfType("*models.ChatMessage")).Return(nil)
	storageMock.On("PublishMessage", "place-1", mock.AnythingOfType("models.ChatMessage")).Return(nil)

	go hub.Run()

	hub.IncomingCh <- models.ChatMessage{PlaceID: "place-1", SenderID: "session-a", Content: "hello", Type: "text"}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "SaveMessage", mock.AnythingOfType("*models.ChatMessage"))
	storageMock.AssertCalled(t, "PublishMessage", "place-1", mock.AnythingOfType("models.ChatMessage"))
}

func TestHub_IncomingMessageOutOfRange(t *testing.T) {
	storageMock := new(MockStorage)
	gate := &fakeGate{allow: map[string]bool{}}
	hub := chathub.NewHub(storageMock, gate, nil)

	sender := newMockClient("session-a", "place-1")
	hub.Clients["session-a"] = sender

	go hub.Run()

	hub.IncomingCh <- models.ChatMessage{PlaceID: "place-1", SenderID: "session-a", Content: "hello", Type: "text"}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
	storageMock.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything)

	select {
	case msg := <-sender.Recv:
		assert.Equal(t, "system_out_of_range", msg.Type)
		assert.Equal(t, "system", msg.SenderID)
	default:
		t.Error("sender did not receive the out-of-range notice")
	}
}

func TestHub_BroadcastToRoomMembersOnly(t *testing.T) {
	storageMock := new(MockStorage)
	hub := chathub.NewHub(storageMock, nil, nil)

	member := newMockClient("session-b", "place-1")
	outsider := newMockClient("session-c", "place-2")
	hub.Clients["session-b"] = member
	hub.Clients["session-c"] = outsider

	go hub.Run()

	hub.PubSubCh <- models.ChatMessage{PlaceID: "place-1", SenderID: "session-a", Content: "hello", Type: "text"}
	time.Sleep(100 * time.Millisecond)

	select {
	case msg := <-member.Recv:
		assert.Equal(t, "hello", msg.Content)
	default:
		t.Error("room member did not receive the message")
	}

	select {
	case <-outsider.Recv:
		t.Error("message leaked into another place's room")
	default:
	}
}
