package hub

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Kutlwano2023/Campus-Learn/internal/event"
	"github.com/Kutlwano2023/Campus-Learn/internal/metrics"
	"github.com/Kutlwano2023/Campus-Learn/internal/model"
	"github.com/Kutlwano2023/Campus-Learn/internal/service"

	"github.com/gorilla/websocket"
)

// opTimeout bounds storage work triggered by a single inbound event.
const opTimeout = 15 * time.Second

type inboundMessage struct {
	event  event.WsEvent
	client *Client
}

// Hub owns the connection registry and dispatches inbound events to the
// messaging and search services. All pushes back to clients are best-effort:
// the durable write is the authoritative state, never the push.
type Hub struct {
	registry   *Registry
	messaging  service.MessagingService
	search     service.SearchService
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	stopOnce   sync.Once

	upgrader websocket.Upgrader
}

func NewHub(messaging service.MessagingService, search service.SearchService, allowedOrigins []string) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		registry:   NewRegistry(),
		messaging:  messaging,
		search:     search,
		register:   make(chan *Client, 1024),
		unregister: make(chan *Client, 1024),
		inbound:    make(chan inboundMessage, 4096), // buffer for burst handling
		ctx:        ctx,
		cancel:     cancel,
	}

	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return allowed[r.Header.Get("Origin")]
		},
	}

	// run manager loop
	go h.run()

	// start worker loop
	for i := 0; i < workerPoolSize; i++ {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in, ok := <-h.inbound:
					if !ok {
						return
					}
					h.handleEvent(in.event, in.client)
				}
			}
		}()
	}

	return h
}

// Registry exposes the connection registry for presence lookups.
func (h *Hub) Registry() *Registry {
	return h.registry
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	if prior := h.registry.Bind(c); prior != nil {
		// last-connect-wins: the replaced connection is shut down
		log.Printf("replacing stale connection %s for user %s", prior.ConnectionID(), c.userID)
		prior.Close()
	}

	metrics.ConnectionsActive.Set(float64(h.registry.Len()))
	log.Printf("client %s online for user %s", c.id, c.userID)
	h.announcePresence(c.userID, true)
}

func (h *Hub) removeClient(c *Client) {
	userID, wentOffline := h.registry.Release(c.id)
	c.Close()

	metrics.ConnectionsActive.Set(float64(h.registry.Len()))

	// A connection replaced by a newer one for the same user does not flip
	// the user's presence.
	if wentOffline {
		log.Printf("client %s offline for user %s", c.id, userID)
		h.announcePresence(userID, false)
	}
}

// announcePresence fans an online/offline transition out to every connected
// client. Delivery is fire-and-forget: a stale connection cannot block or
// fail delivery to the rest.
func (h *Hub) announcePresence(userID string, online bool) {
	name := event.EventUserOffline
	state := "offline"
	if online {
		name = event.EventUserOnline
		state = "online"
	}

	ev, err := event.New(name, event.PresencePayload{UserID: userID})
	if err != nil {
		log.Printf("failed to encode presence event: %v", err)
		return
	}

	for _, p := range h.registry.Snapshot() {
		p.TrySend(ev)
	}
	metrics.PresenceEvents.WithLabelValues(state).Inc()
}

func (h *Hub) handleEvent(ev event.WsEvent, c Pusher) {
	ctx, cancel := context.WithTimeout(h.ctx, opTimeout)
	defer cancel()

	switch ev.Event {
	case event.EventSendMessage:
		h.handleSendMessage(ctx, ev, c)
	case event.EventMarkAsRead:
		h.handleMarkAsRead(ctx, ev, c)
	case event.EventSearchUsers:
		h.handleSearchUsers(ctx, ev, c)
	case event.EventGetConversations:
		h.handleGetConversations(ctx, c)
	case event.EventGetRegisteredUsers:
		h.handleGetRegisteredUsers(ctx, c)
	case event.EventGetOnlineUsers:
		h.pushTo(c, event.EventOnlineUsers, h.registry.OnlineUserIDs())
	default:
		log.Printf("unknown event type: %s", ev.Event)
	}
}

// handleSendMessage relays a direct message: the durable write happens first
// and any failure aborts before a single push goes out.
func (h *Hub) handleSendMessage(ctx context.Context, ev event.WsEvent, c Pusher) {
	var p event.SendMessagePayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		h.pushError(c, service.CodeInvalidArgument, "malformed sendMessage payload")
		return
	}

	msg, err := h.messaging.Send(ctx, c.UserID(), p.ReceiverID, p.Content)
	if err != nil {
		h.pushServiceError(c, err)
		return
	}

	// Push to the receiver only if a live connection exists; otherwise the
	// message waits in storage for the next fetch.
	outcome := "queued"
	if receiver, ok := h.registry.Get(p.ReceiverID); ok {
		if push, err := event.New(event.EventReceiveMessage, msg); err == nil && receiver.TrySend(push) {
			outcome = "pushed"
		}
	}
	metrics.MessagesDelivered.WithLabelValues(outcome).Inc()

	// Echo to the sender so its UI reflects the sent state.
	h.pushTo(c, event.EventMessageSent, msg)
}

func (h *Hub) handleMarkAsRead(ctx context.Context, ev event.WsEvent, c Pusher) {
	var p event.MarkAsReadPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		h.pushError(c, service.CodeInvalidArgument, "malformed markAsRead payload")
		return
	}

	updated, err := h.messaging.MarkRead(ctx, p.ConversationID, c.UserID())
	if err != nil {
		h.pushServiceError(c, err)
		return
	}

	h.pushTo(c, event.EventMessagesRead, event.MessagesReadPayload{
		ConversationID: p.ConversationID,
		Updated:        updated,
	})
}

func (h *Hub) handleSearchUsers(ctx context.Context, ev event.WsEvent, c Pusher) {
	var p event.SearchUsersPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		h.pushError(c, service.CodeInvalidArgument, "malformed searchUsers payload")
		return
	}

	results, err := h.search.Search(ctx, p.Query, c.UserID())
	if err != nil {
		h.pushServiceError(c, err)
		return
	}
	h.pushTo(c, event.EventUserSearchResults, results)
}

func (h *Hub) handleGetConversations(ctx context.Context, c Pusher) {
	convs, err := h.messaging.ConversationsFor(ctx, c.UserID())
	if err != nil {
		h.pushServiceError(c, err)
		return
	}
	h.pushTo(c, event.EventConversations, convs)
}

func (h *Hub) handleGetRegisteredUsers(ctx context.Context, c Pusher) {
	users, err := h.search.RegisteredUsers(ctx, c.UserID())
	if err != nil {
		h.pushServiceError(c, err)
		return
	}
	h.pushTo(c, event.EventRegisteredUsers, users)
}

func (h *Hub) pushTo(c Pusher, name string, payload any) {
	ev, err := event.New(name, payload)
	if err != nil {
		log.Printf("failed to encode %s event: %v", name, err)
		return
	}
	c.TrySend(ev)
}

func (h *Hub) pushServiceError(c Pusher, err error) {
	h.pushError(c, service.ErrorCode(err), err.Error())
}

func (h *Hub) pushError(c Pusher, code, message string) {
	ev, err := event.New(event.EventError, model.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.TrySend(ev)
}

// ServeWS upgrades an authenticated request and registers the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	RegisterClient(userID, conn, h)
}

// Stop shuts the hub down: closes every live connection, drains the worker
// pool and returns once all workers have exited. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.cancel()

		for _, p := range h.registry.Snapshot() {
			p.Close()
		}

		close(h.inbound)
		h.wg.Wait()
	})
}
