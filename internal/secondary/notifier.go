package secondary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/tidwall/gjson"
)

const (
	// heartbeatInterval is how often a live subscription pings the
	// realtime endpoint to keep the connection open.
	heartbeatInterval = 30 * time.Second

	// reconnectMin and reconnectMax bound the exponential backoff
	// between reconnect attempts after a dropped subscription.
	reconnectMin = 5 * time.Second
	reconnectMax = 5 * time.Minute

	// reconnectBackoffMultiplier is the exponential growth factor
	// applied to the reconnect backoff after each consecutive failure.
	reconnectBackoffMultiplier = 2

	// jitterDivisor controls the range of random jitter added to
	// reconnect backoff: jitter is uniform in [0, backoff/jitterDivisor).
	jitterDivisor = 2
)

// realtimeMsg is the wire format of the realtime channel protocol.
type realtimeMsg struct {
	Topic   string         `json:"topic"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
	Ref     string         `json:"ref"`
}

// wsConn abstracts the websocket connection so subscriptions can be
// tested without a realtime server. *websocket.Conn satisfies this.
type wsConn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// DialFunc opens a websocket connection to the realtime endpoint.
type DialFunc func(ctx context.Context, url string) (wsConn, error)

func defaultDial(ctx context.Context, url string) (wsConn, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	return conn, nil
}

// Notifier opens push subscriptions to the secondary store's change
// stream. Each Subscribe call holds its own connection and lifecycle;
// there is no shared reference counting between subscribers of the
// same key.
type Notifier struct {
	realtimeURL string
	apiKey      string
	resolver    *Resolver
	logger      *slog.Logger
	dial        DialFunc
}

// NewNotifier creates a notifier for the given realtime endpoint. A nil
// dial uses the real websocket dialer.
func NewNotifier(realtimeURL, apiKey string, resolver *Resolver, logger *slog.Logger, dial DialFunc) *Notifier {
	if dial == nil {
		dial = defaultDial
	}

	return &Notifier{
		realtimeURL: realtimeURL,
		apiKey:      apiKey,
		resolver:    resolver,
		logger:      logger,
		dial:        dial,
	}
}

// Subscribe resolves the table for key and streams its change events,
// invoking onChange on every insert, update, or delete. Events are
// coalesced to a bare "something changed" signal; the subscriber
// re-fetches. When the key has no table, Subscribe is a no-op that
// returns a trivial unsubscribe.
//
// The subscription reconnects with backoff until unsubscribed or ctx
// is cancelled.
func (n *Notifier) Subscribe(ctx context.Context, key string, onChange func()) func() {
	table, ok := n.resolver.Resolve(ctx, key)
	if !ok {
		return func() {}
	}

	subCtx, cancel := context.WithCancel(ctx)

	go n.run(subCtx, table, onChange)

	return cancel
}

// run keeps one subscription alive until ctx is cancelled.
func (n *Notifier) run(ctx context.Context, table string, onChange func()) {
	backoff := reconnectMin

	for {
		err := n.stream(ctx, table, onChange)
		if ctx.Err() != nil {
			return
		}

		n.logger.Warn("realtime subscription dropped",
			slog.String("table", table),
			slog.String("error", err.Error()),
			slog.Duration("retry_in", backoff),
		)

		jitter := rand.N(backoff / jitterDivisor)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff + jitter):
		}

		backoff *= reconnectBackoffMultiplier
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

// stream runs a single connect-join-read cycle and returns the error
// that ended it.
func (n *Notifier) stream(ctx context.Context, table string, onChange func()) error {
	url := n.realtimeURL + "/websocket?apikey=" + n.apiKey + "&vsn=1.0.0"

	conn, err := n.dial(ctx, url)
	if err != nil {
		return fmt.Errorf("dialling realtime endpoint: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "unsubscribed")

	var ref atomic.Int64

	nextRef := func() string {
		return strconv.FormatInt(ref.Add(1), 10)
	}

	join := realtimeMsg{
		Topic:   "realtime:public:" + table,
		Event:   "phx_join",
		Payload: map[string]any{},
		Ref:     nextRef(),
	}
	if err := writeMsg(ctx, conn, join); err != nil {
		return fmt.Errorf("joining topic for %s: %w", table, err)
	}

	n.logger.Debug("realtime subscription open", slog.String("table", table))

	// Heartbeats run on their own goroutine. A heartbeat write failure
	// closes the connection, which unblocks the read loop and ends the
	// stream; the reconnect loop in run takes it from there.
	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()

	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-hbCtx.Done():
				return
			case <-ticker.C:
				hb := realtimeMsg{
					Topic:   "phoenix",
					Event:   "heartbeat",
					Payload: map[string]any{},
					Ref:     nextRef(),
				}
				if err := writeMsg(hbCtx, conn, hb); err != nil {
					conn.Close(websocket.StatusAbnormalClosure, "heartbeat failed")
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("reading realtime stream: %w", err)
		}

		switch gjson.GetBytes(data, "event").String() {
		case "INSERT", "UPDATE", "DELETE":
			onChange()
		case "phx_error":
			return fmt.Errorf("realtime channel error for %s", table)
		}
	}
}

func writeMsg(ctx context.Context, conn wsConn, msg realtimeMsg) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return conn.Write(ctx, websocket.MessageText, data)
}
