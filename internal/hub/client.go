package hub

import (
	"context"
	"log"
	"net"
	"sync"
	"time"

	"github.com/Kutlwano2023/Campus-Learn/internal/event"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	// tuning parameters
	writeWait          = 10 * time.Second       // time allowed to write a message to the peer
	pongWait           = 20 * time.Second       // time allowed to read the next pong message from the peer
	pingInterval       = (pongWait * 9) / 10    // send pings to peer with this period
	maxMessageSize     = 64 * 1024              // max inbound message size (64KB)
	sendBufSize        = 256                    // per-connection outbound buffer size
	workerPoolSize     = 16                     // number of workers to process inbound messages
	sendTimeout        = 2 * time.Second        // timeout for enqueuing outbound messages
	pushTimeout        = 200 * time.Millisecond // timeout for best-effort pushes
	registerTimeout    = 5 * time.Second        // timeout for client registration
	unregisterTimeout  = 5 * time.Second        // timeout for client unregistration
	inboundSendTimeout = 500 * time.Millisecond // timeout for sending to inbound channel
)

// Client is one live websocket connection bound to an authenticated user.
type Client struct {
	id          string
	userID      string
	conn        *websocket.Conn
	hub         *Hub
	egress      chan event.WsEvent
	connectedAt time.Time

	cancel         context.CancelFunc
	ctx            context.Context
	once           sync.Once
	connClosed     chan struct{}
	connClosedOnce sync.Once
	closed         bool
	closedMu       sync.RWMutex
}

// RegisterClient creates a client for an upgraded connection and hands it to
// the hub. The read deadline plus pong handler doubles as the heartbeat that
// reclaims registry entries from abruptly dropped clients.
func RegisterClient(userID string, conn *websocket.Conn, h *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	client := &Client{
		id:          uuid.New().String(),
		userID:      userID,
		conn:        conn,
		hub:         h,
		egress:      make(chan event.WsEvent, sendBufSize),
		connectedAt: time.Now().UTC(),
		cancel:      cancel,
		ctx:         ctx,
		connClosed:  make(chan struct{}),
	}

	select {
	case h.register <- client:
		go client.readMessages()
		go client.writeMessages()
		log.Printf("client %s registered for user %s", client.id, userID)
		return client
	case <-time.After(registerTimeout):
		log.Printf("failed to register client %s: timeout", client.id)
		cancel()
		conn.Close()
		return nil
	}
}

func (c *Client) ConnectionID() string   { return c.id }
func (c *Client) UserID() string         { return c.userID }
func (c *Client) ConnectedAt() time.Time { return c.connectedAt }

func (c *Client) readMessages() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-time.After(unregisterTimeout):
			log.Printf("failed to unregister client %s: timeout", c.id)
		}
		c.Close()
	}()

	c.conn.SetReadLimit(int64(maxMessageSize))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			var ev event.WsEvent

			if err := c.conn.ReadJSON(&ev); err != nil {
				if websocket.IsCloseError(err,
					websocket.CloseNormalClosure,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					log.Printf("client disconnected: %v", c.id)
					return
				}

				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseInternalServerErr,
					websocket.CloseProtocolError,
				) {
					log.Printf("unexpected close for %s: %v", c.id, err)
				}

				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					log.Printf("client %s timed out - closing connection", c.id)
					return
				}

				log.Printf("error reading from client %s: %v", c.id, err)
				return
			}

			// Non-blocking send into inbound processing queue to avoid blocking reader
			select {
			case c.hub.inbound <- inboundMessage{client: c, event: ev}:
			case <-time.After(inboundSendTimeout):
				log.Printf("inbound send timeout: dropping client %s", c.id)
				c.cancel()
				c.conn.Close()
			case <-c.ctx.Done():
				return
			}
		}
	}
}

func (c *Client) writeMessages() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()

		c.connClosedOnce.Do(func() {
			close(c.connClosed)
		})
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case ev, ok := <-c.egress:
			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, nil); err != nil {
					log.Printf("connection closed: %v", err)
				}
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Printf("write error for client %s: %v", c.id, err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Printf("ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

func (c *Client) pongHandler(string) error {
	return c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

// Send enqueues an event for the client, disconnecting it when its egress
// buffer stays full past the send timeout.
func (c *Client) Send(ev event.WsEvent) {
	select {
	case c.egress <- ev:
	case <-time.After(sendTimeout):
		log.Printf("egress full, disconnecting client %s", c.id)
		select {
		case c.hub.unregister <- c:
		case <-time.After(unregisterTimeout):
			log.Printf("failed to unregister client %s: timeout", c.id)
		}
	case <-c.ctx.Done():
		// client already closed
	}
}

// TrySend attempts a best-effort push. A slow or closed client never blocks
// or fails the triggering operation.
func (c *Client) TrySend(ev event.WsEvent) bool {
	if c.IsClosed() {
		return false
	}

	select {
	case <-c.ctx.Done():
		return false
	case c.egress <- ev:
		return true
	case <-time.After(pushTimeout):
		return false
	}
}

func (c *Client) Close() {
	c.once.Do(func() {
		c.closedMu.Lock()
		c.closed = true
		c.closedMu.Unlock()

		c.cancel()
		close(c.egress)

		// Wait for writeMessages to close conn, or force close after timeout
		go func() {
			select {
			case <-c.connClosed:
			case <-time.After(5 * time.Second):
				_ = c.conn.Close()
				log.Printf("safety timeout: force closed connection for client %s", c.id)
			}
		}()
	})
}

// IsClosed returns true if the client has been closed
func (c *Client) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}
