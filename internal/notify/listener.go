package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"strings"
	"sync"

	"github.com/Kutlwano2023/Campus-Learn/internal/metrics"
	"github.com/Kutlwano2023/Campus-Learn/internal/model"

	"go.uber.org/zap"
)

// maxLineSize bounds a single ingest line (64KB).
const maxLineSize = 64 * 1024

// Listener is the newline-delimited-JSON TCP ingestion path for
// notifications: one JSON object per line, malformed lines silently
// discarded. It carries no authentication and no backpressure handling and
// exists as a demo-only ingress; it binds to loopback by default and must
// not be exposed beyond it.
type Listener struct {
	feed   *Feed
	logger *zap.Logger
	addr   string

	ln     net.Listener
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewListener(addr string, feed *Feed, logger *zap.Logger) *Listener {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener{
		feed:   feed,
		logger: logger,
		addr:   addr,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start binds the listen address and begins accepting connections.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	l.ln = ln

	l.logger.Info("notification ingest listener started",
		zap.String("addr", ln.Addr().String()),
	)

	l.wg.Add(1)
	go l.acceptLoop()
	return nil
}

// Addr returns the bound address, useful when listening on port 0.
func (l *Listener) Addr() net.Addr {
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.ctx.Done():
				return
			default:
			}
			l.logger.Warn("accept failed", zap.Error(err))
			continue
		}

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.handleConn(conn)
		}()
	}
}

func (l *Listener) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), maxLineSize)

	for scanner.Scan() {
		select {
		case <-l.ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		l.processLine(line)
	}
}

// processLine deserializes one JSON line into a Notification and stores it.
// Malformed input and notifications without a user id are discarded without
// affecting any user's list.
func (l *Listener) processLine(line string) {
	var n model.Notification
	if err := json.Unmarshal([]byte(line), &n); err != nil {
		metrics.IngestDiscarded.Inc()
		l.logger.Debug("discarding malformed ingest line", zap.Error(err))
		return
	}
	if strings.TrimSpace(n.UserID) == "" {
		metrics.IngestDiscarded.Inc()
		return
	}

	l.feed.Add(&n)
	metrics.NotificationsIngested.Inc()
	l.logger.Debug("notification ingested",
		zap.String("user_id", n.UserID),
		zap.String("type", n.Type),
	)
}

// Stop closes the listen socket and waits for in-flight connections.
func (l *Listener) Stop() {
	l.cancel()
	if l.ln != nil {
		_ = l.ln.Close()
	}
	l.wg.Wait()
}
