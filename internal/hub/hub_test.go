package hub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Kutlwano2023/Campus-Learn/internal/db"
	"github.com/Kutlwano2023/Campus-Learn/internal/event"
	"github.com/Kutlwano2023/Campus-Learn/internal/model"
	"github.com/Kutlwano2023/Campus-Learn/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeMessagingService struct {
	sendMsg    *model.Message
	sendErr    error
	markReadN  int64
	markErr    error
	convs      []model.Conversation
	sendCalled bool
}

func (f *fakeMessagingService) Send(ctx context.Context, senderID, receiverID, content string) (*model.Message, error) {
	f.sendCalled = true
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return f.sendMsg, nil
}

func (f *fakeMessagingService) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	return f.markReadN, f.markErr
}

func (f *fakeMessagingService) ConversationsFor(ctx context.Context, userID string) ([]model.Conversation, error) {
	return f.convs, nil
}

func (f *fakeMessagingService) MessagesWith(ctx context.Context, userID, otherUserID string) ([]model.Message, error) {
	return nil, nil
}

func (f *fakeMessagingService) ConversationMessages(ctx context.Context, conversationID string, page int64) (*db.PaginatedResult[model.Message], error) {
	return &db.PaginatedResult[model.Message]{}, nil
}

func (f *fakeMessagingService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

type fakeSearchService struct {
	results []model.UserSummary
}

func (f *fakeSearchService) Search(ctx context.Context, query, excludeUserID string) ([]model.UserSummary, error) {
	return f.results, nil
}

func (f *fakeSearchService) RegisteredUsers(ctx context.Context, excludeUserID string) ([]model.UserSummary, error) {
	return f.results, nil
}

func newTestHub(t *testing.T, messaging service.MessagingService, search service.SearchService) *Hub {
	t.Helper()
	h := NewHub(messaging, search, nil)
	t.Cleanup(h.Stop)
	return h
}

func eventNames(events []event.WsEvent) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Event)
	}
	return names
}

func findEvent(events []event.WsEvent, name string) (event.WsEvent, bool) {
	for _, ev := range events {
		if ev.Event == name {
			return ev, true
		}
	}
	return event.WsEvent{}, false
}

func TestAnnouncePresenceFanOut(t *testing.T) {
	h := newTestHub(t, &fakeMessagingService{}, &fakeSearchService{})

	a := newFakePusher("conn-a", "user-a")
	b := newFakePusher("conn-b", "user-b")
	stale := newFakePusher("conn-c", "user-c")
	stale.fail = true

	h.registry.Bind(a)
	h.registry.Bind(b)
	h.registry.Bind(stale)

	h.announcePresence("user-x", true)

	// The failing connection must not prevent delivery to the rest.
	for _, p := range []*fakePusher{a, b} {
		ev, ok := findEvent(p.received(), event.EventUserOnline)
		if !ok {
			t.Fatalf("%s did not receive userOnline", p.userID)
		}

		var payload event.PresencePayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			t.Fatalf("bad presence payload: %v", err)
		}
		if payload.UserID != "user-x" {
			t.Errorf("presence payload user = %q, want user-x", payload.UserID)
		}
	}

	h.announcePresence("user-x", false)
	if _, ok := findEvent(a.received(), event.EventUserOffline); !ok {
		t.Error("user-a did not receive userOffline")
	}
}

func TestHandleSendMessagePushesReceiverAndEchoesSender(t *testing.T) {
	msg := &model.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   "alice",
		ReceiverID: "bob",
		Content:    "Hello",
		SentAt:     time.Now().UTC(),
	}
	h := newTestHub(t, &fakeMessagingService{sendMsg: msg}, &fakeSearchService{})

	sender := newFakePusher("conn-a", "alice")
	receiver := newFakePusher("conn-b", "bob")
	h.registry.Bind(sender)
	h.registry.Bind(receiver)

	ev, _ := event.New(event.EventSendMessage, event.SendMessagePayload{ReceiverID: "bob", Content: "Hello"})
	h.handleEvent(ev, sender)

	got, ok := findEvent(receiver.received(), event.EventReceiveMessage)
	if !ok {
		t.Fatalf("receiver events = %v, want receiveMessage", eventNames(receiver.received()))
	}
	var pushed model.Message
	if err := json.Unmarshal(got.Payload, &pushed); err != nil {
		t.Fatalf("bad receiveMessage payload: %v", err)
	}
	if pushed.Content != "Hello" || pushed.SenderID != "alice" {
		t.Errorf("pushed message = %+v, want content Hello from alice", pushed)
	}

	if _, ok := findEvent(sender.received(), event.EventMessageSent); !ok {
		t.Errorf("sender events = %v, want messageSent echo", eventNames(sender.received()))
	}
}

func TestHandleSendMessageOfflineReceiver(t *testing.T) {
	msg := &model.Message{SenderID: "alice", ReceiverID: "bob", Content: "Hi"}
	h := newTestHub(t, &fakeMessagingService{sendMsg: msg}, &fakeSearchService{})

	sender := newFakePusher("conn-a", "alice")
	h.registry.Bind(sender)

	ev, _ := event.New(event.EventSendMessage, event.SendMessagePayload{ReceiverID: "bob", Content: "Hi"})
	h.handleEvent(ev, sender)

	// No receiver connection: the write stands and the sender still gets the echo.
	if _, ok := findEvent(sender.received(), event.EventMessageSent); !ok {
		t.Errorf("sender events = %v, want messageSent", eventNames(sender.received()))
	}
}

func TestHandleSendMessageStorageErrorAbortsBeforePush(t *testing.T) {
	messaging := &fakeMessagingService{sendErr: errors.New("write concern failed")}
	h := newTestHub(t, messaging, &fakeSearchService{})

	sender := newFakePusher("conn-a", "alice")
	receiver := newFakePusher("conn-b", "bob")
	h.registry.Bind(sender)
	h.registry.Bind(receiver)

	ev, _ := event.New(event.EventSendMessage, event.SendMessagePayload{ReceiverID: "bob", Content: "Hello"})
	h.handleEvent(ev, sender)

	if len(receiver.received()) != 0 {
		t.Errorf("receiver got %v after a failed write, want nothing", eventNames(receiver.received()))
	}

	got, ok := findEvent(sender.received(), event.EventError)
	if !ok {
		t.Fatalf("sender events = %v, want error", eventNames(sender.received()))
	}
	var payload model.ErrorPayload
	if err := json.Unmarshal(got.Payload, &payload); err != nil {
		t.Fatalf("bad error payload: %v", err)
	}
	if payload.Code != service.CodeStorage {
		t.Errorf("error code = %q, want %q", payload.Code, service.CodeStorage)
	}
}

func TestHandleSendMessageValidationError(t *testing.T) {
	messaging := &fakeMessagingService{sendErr: service.ErrInvalidArgument}
	h := newTestHub(t, messaging, &fakeSearchService{})

	sender := newFakePusher("conn-a", "alice")
	h.registry.Bind(sender)

	ev, _ := event.New(event.EventSendMessage, event.SendMessagePayload{ReceiverID: "alice", Content: ""})
	h.handleEvent(ev, sender)

	got, ok := findEvent(sender.received(), event.EventError)
	if !ok {
		t.Fatalf("sender events = %v, want error", eventNames(sender.received()))
	}
	var payload model.ErrorPayload
	if err := json.Unmarshal(got.Payload, &payload); err != nil {
		t.Fatalf("bad error payload: %v", err)
	}
	if payload.Code != service.CodeInvalidArgument {
		t.Errorf("error code = %q, want %q", payload.Code, service.CodeInvalidArgument)
	}
}

func TestHandleMarkAsRead(t *testing.T) {
	h := newTestHub(t, &fakeMessagingService{markReadN: 3}, &fakeSearchService{})

	caller := newFakePusher("conn-a", "alice")
	h.registry.Bind(caller)

	convID := primitive.NewObjectID().Hex()
	ev, _ := event.New(event.EventMarkAsRead, event.MarkAsReadPayload{ConversationID: convID})
	h.handleEvent(ev, caller)

	got, ok := findEvent(caller.received(), event.EventMessagesRead)
	if !ok {
		t.Fatalf("caller events = %v, want messagesRead", eventNames(caller.received()))
	}
	var payload event.MessagesReadPayload
	if err := json.Unmarshal(got.Payload, &payload); err != nil {
		t.Fatalf("bad messagesRead payload: %v", err)
	}
	if payload.ConversationID != convID || payload.Updated != 3 {
		t.Errorf("messagesRead payload = %+v, want conversation %s with 3 updated", payload, convID)
	}
}

func TestHandleGetOnlineUsers(t *testing.T) {
	h := newTestHub(t, &fakeMessagingService{}, &fakeSearchService{})

	caller := newFakePusher("conn-a", "alice")
	other := newFakePusher("conn-b", "bob")
	h.registry.Bind(caller)
	h.registry.Bind(other)

	h.handleEvent(event.WsEvent{Event: event.EventGetOnlineUsers}, caller)

	got, ok := findEvent(caller.received(), event.EventOnlineUsers)
	if !ok {
		t.Fatalf("caller events = %v, want onlineUsers", eventNames(caller.received()))
	}
	var ids []string
	if err := json.Unmarshal(got.Payload, &ids); err != nil {
		t.Fatalf("bad onlineUsers payload: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("online users = %v, want alice and bob", ids)
	}
}

func TestHandleSearchUsers(t *testing.T) {
	search := &fakeSearchService{results: []model.UserSummary{
		{UserID: "bob", FullName: "Bob Stone", IsOnline: true},
	}}
	h := newTestHub(t, &fakeMessagingService{}, search)

	caller := newFakePusher("conn-a", "alice")
	h.registry.Bind(caller)

	ev, _ := event.New(event.EventSearchUsers, event.SearchUsersPayload{Query: "bob"})
	h.handleEvent(ev, caller)

	got, ok := findEvent(caller.received(), event.EventUserSearchResults)
	if !ok {
		t.Fatalf("caller events = %v, want userSearchResults", eventNames(caller.received()))
	}
	var results []model.UserSummary
	if err := json.Unmarshal(got.Payload, &results); err != nil {
		t.Fatalf("bad search payload: %v", err)
	}
	if len(results) != 1 || results[0].UserID != "bob" || !results[0].IsOnline {
		t.Errorf("search results = %+v, want online bob", results)
	}
}

func TestHandleMalformedPayload(t *testing.T) {
	h := newTestHub(t, &fakeMessagingService{}, &fakeSearchService{})

	caller := newFakePusher("conn-a", "alice")
	h.registry.Bind(caller)

	h.handleEvent(event.WsEvent{
		Event:   event.EventSendMessage,
		Payload: json.RawMessage(`{not json`),
	}, caller)

	got, ok := findEvent(caller.received(), event.EventError)
	if !ok {
		t.Fatalf("caller events = %v, want error", eventNames(caller.received()))
	}
	var payload model.ErrorPayload
	if err := json.Unmarshal(got.Payload, &payload); err != nil {
		t.Fatalf("bad error payload: %v", err)
	}
	if payload.Code != service.CodeInvalidArgument {
		t.Errorf("error code = %q, want %q", payload.Code, service.CodeInvalidArgument)
	}
}

func TestHandleUnknownEvent(t *testing.T) {
	h := newTestHub(t, &fakeMessagingService{}, &fakeSearchService{})

	caller := newFakePusher("conn-a", "alice")
	h.handleEvent(event.WsEvent{Event: "noSuchEvent"}, caller)

	if len(caller.received()) != 0 {
		t.Errorf("unknown event produced pushes: %v", eventNames(caller.received()))
	}
}
