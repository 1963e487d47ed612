package chathub

import (
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/metrics"
	"cinesocial/backend/internal/models"
	"cinesocial/backend/internal/storage"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// OfflineNotifier is told about messages whose receiver had no live
// connection on this instance.
type OfflineNotifier interface {
	NotifyOffline(ctx context.Context, msg models.ChatMessage)
}

// ManagerService is the chat and presence hub.
type ManagerService struct {
	Storage  storage.ChatStore
	registry *Registry
	relay    Relay
	notifier OfflineNotifier
	log      zerolog.Logger
	now      func() time.Time

	stampMu   sync.Mutex
	lastStamp time.Time
}

type Option func(*ManagerService)

// WithRelay replaces the in-process relay.
func WithRelay(r Relay) Option { return func(m *ManagerService) { m.relay = r } }

func WithNotifier(n OfflineNotifier) Option { return func(m *ManagerService) { m.notifier = n } }

func WithRegistry(r *Registry) Option { return func(m *ManagerService) { m.registry = r } }

// WithClock is used by tests to pin message timestamps.
func WithClock(now func() time.Time) Option { return func(m *ManagerService) { m.now = now } }

func NewManagerService(s storage.ChatStore, opts ...Option) *ManagerService {
	m := &ManagerService{
		Storage:  s,
		registry: NewRegistry(),
		relay:    NewLocalRelay(),
		log:      logging.With("chathub"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start attaches the hub to its relay. Messages published before Start are
// still delivered locally.
func (m *ManagerService) Start(ctx context.Context) error {
	if err := m.relay.Start(ctx, m.deliver); err != nil {
		return fmt.Errorf("start relay: %w", err)
	}
	return nil
}

// Shutdown closes every live connection; their pumps disconnect them.
func (m *ManagerService) Shutdown() {
	clients := m.registry.All()
	for _, c := range clients {
		c.Close()
	}
	m.log.Info().Int("connections", len(clients)).Msg("hub shut down")
}

// Connect registers a live connection. The user's first connection flips
// presence online and notifies every connection watching that user.
func (m *ManagerService) Connect(c Client) {
	first, watchers := m.registry.Add(c)
	m.updateGauges()

	m.log.Debug().
		Uint("user_id", c.GetUserID()).
		Str("conn_id", c.GetConnID()).
		Bool("first", first).
		Msg("client connected")

	if first {
		m.broadcastPresence(c.GetUserID(), true, watchers)
	}
}

// Disconnect unregisters a connection and its presence subscriptions. The
// user's last connection flips presence offline.
func (m *ManagerService) Disconnect(c Client) {
	last, watchers := m.registry.Remove(c)
	m.updateGauges()

	m.log.Debug().
		Uint("user_id", c.GetUserID()).
		Str("conn_id", c.GetConnID()).
		Bool("last", last).
		Msg("client disconnected")

	if last {
		m.broadcastPresence(c.GetUserID(), false, watchers)
	}
}

// SendMessage validates, persists and fans out a direct message. Nothing is
// written when validation fails. A receiver without live connections is not
// an error; the message waits in history.
func (m *ManagerService) SendMessage(ctx context.Context, senderID, receiverID uint, text string) (*models.ChatMessage, error) {
	if err := validateSend(senderID, receiverID, text); err != nil {
		metrics.MessagesFailed.WithLabelValues("malformed").Inc()
		return nil, err
	}

	exist, err := m.Storage.UsersExist(ctx, senderID, receiverID)
	if err != nil {
		metrics.MessagesFailed.WithLabelValues("store").Inc()
		m.log.Error().Err(err).Uint("receiver_id", receiverID).Msg("failed to look up users")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !exist {
		metrics.MessagesFailed.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: unknown user", ErrMalformedInput)
	}

	msg := models.ChatMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Timestamp:  m.stamp(),
	}
	if err := m.Storage.SaveChatMessage(ctx, &msg); err != nil {
		metrics.MessagesFailed.WithLabelValues("store").Inc()
		m.log.Error().Err(err).Uint("sender_id", senderID).Uint("receiver_id", receiverID).Msg("failed to persist message")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	metrics.MessagesSent.Inc()

	online := m.registry.IsOnline(receiverID)

	if err := m.relay.Publish(ctx, msg); err != nil {
		m.log.Warn().Err(err).Uint("message_id", msg.ID).Msg("relay publish failed, delivering locally")
		m.deliver(msg)
	}

	if !online && m.notifier != nil {
		go m.notifier.NotifyOffline(context.WithoutCancel(ctx), msg)
	}
	return &msg, nil
}

// stamp returns a UTC timestamp strictly after every one this hub issued
// before, even if the wall clock steps back. Postgres keeps microseconds.
func (m *ManagerService) stamp() time.Time {
	m.stampMu.Lock()
	defer m.stampMu.Unlock()

	now := m.now().UTC().Truncate(time.Microsecond)
	if !now.After(m.lastStamp) {
		now = m.lastStamp.Add(time.Microsecond)
	}
	m.lastStamp = now
	return now
}

func validateSend(senderID, receiverID uint, text string) error {
	switch {
	case senderID == 0 || receiverID == 0:
		return fmt.Errorf("%w: sender and receiver are required", ErrMalformedInput)
	case senderID == receiverID:
		return fmt.Errorf("%w: cannot message yourself", ErrMalformedInput)
	case strings.TrimSpace(text) == "":
		return fmt.Errorf("%w: message text is empty", ErrMalformedInput)
	}
	return nil
}

// GetChatHistory returns one page of the conversation between a and b in
// ascending order. The result is the same whichever side asks.
func (m *ManagerService) GetChatHistory(ctx context.Context, a, b uint, pageSize int, before *time.Time) ([]models.ChatMessage, error) {
	if a == 0 || b == 0 {
		return nil, fmt.Errorf("%w: both users are required", ErrMalformedInput)
	}

	msgs, err := m.Storage.GetChatHistory(ctx, a, b, NormalizePageSize(pageSize), before)
	if err != nil {
		m.log.Error().Err(err).Uint("user_a", a).Uint("user_b", b).Msg("failed to load history")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return msgs, nil
}

// NormalizePageSize applies the default and the upper bound.
func NormalizePageSize(n int) int {
	switch {
	case n <= 0:
		return config.DefaultHistoryPageSize
	case n > config.MaxHistoryPageSize:
		return config.MaxHistoryPageSize
	}
	return n
}

// CheckUserOnline answers target's presence and subscribes c to its future
// changes for as long as c stays connected.
func (m *ManagerService) CheckUserOnline(c Client, target uint) bool {
	return m.registry.Watch(c, target)
}

// IsOnline reports presence without subscribing.
func (m *ManagerService) IsOnline(userID uint) bool {
	return m.registry.IsOnline(userID)
}

// deliver pushes msg to this instance's connections of the receiver.
func (m *ManagerService) deliver(msg models.ChatMessage) {
	frame := models.Frame{Event: models.EventReceiveMessage, Data: msg}
	for _, c := range m.registry.Connections(msg.ReceiverID) {
		m.push(c, frame)
	}
}

func (m *ManagerService) broadcastPresence(userID uint, online bool, watchers []Client) {
	state := "offline"
	if online {
		state = "online"
	}
	metrics.PresenceEvents.WithLabelValues(state).Inc()

	frame := models.Frame{
		Event: models.EventUserOnlineStatusChanged,
		Data:  models.PresencePayload{UserID: userID, Online: online},
	}
	for _, w := range watchers {
		m.push(w, frame)
	}
}

func (m *ManagerService) push(c Client, frame models.Frame) {
	if !c.Send(frame) {
		metrics.DroppedFrames.Inc()
		m.log.Warn().
			Uint("user_id", c.GetUserID()).
			Str("conn_id", c.GetConnID()).
			Str("event", frame.Event).
			Msg("send queue full or closed, frame dropped")
	}
}

func (m *ManagerService) updateGauges() {
	conns, users := m.registry.Stats()
	metrics.LiveConnections.Set(float64(conns))
	metrics.OnlineUsers.Set(float64(users))
}
