package workspace

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChannelPrefix is followed by the user ID.
const ChannelPrefix = "airlink:workspace:"

// Publisher is the slice of *redis.Client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Change is the notice published after each state change.
type Change struct {
	UserID            string    `json:"user_id"`
	SignedIn          bool      `json:"signed_in"`
	UnreadCount       int       `json:"unread_count"`
	LastSignalsSeenAt string    `json:"last_signals_seen_at,omitempty"`
	At                time.Time `json:"at"`
}

// Notifier forwards workspace changes to Redis from its own goroutine so a
// slow or absent Redis never blocks Dispatch. Notices are dropped when the
// buffer is full.
type Notifier struct {
	pub     Publisher
	log     *zap.Logger
	queue   chan Change
	dropped atomic.Int64
	now     func() time.Time
}

func NewNotifier(pub Publisher, log *zap.Logger, buffer int) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	if buffer < 1 {
		buffer = 64
	}
	return &Notifier{
		pub:   pub,
		log:   log.Named("workspace.notifier"),
		queue: make(chan Change, buffer),
		now:   time.Now,
	}
}

// Listener adapts the notifier for WithListener.
func (n *Notifier) Listener() Listener {
	return func(userID string, s State) {
		c := Change{
			UserID:            userID,
			SignedIn:          s.User.SignedIn,
			UnreadCount:       UnreadCount(s),
			LastSignalsSeenAt: s.LastSignalsSeenAt,
			At:                n.now().UTC(),
		}
		select {
		case n.queue <- c:
		default:
			n.dropped.Add(1)
		}
	}
}

// Dropped reports how many notices were discarded on a full buffer.
func (n *Notifier) Dropped() int64 {
	return n.dropped.Load()
}

// Run publishes queued notices until ctx is done.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-n.queue:
			n.publish(ctx, c)
		}
	}
}

func (n *Notifier) publish(ctx context.Context, c Change) {
	payload, err := json.Marshal(c)
	if err != nil {
		n.log.Warn("marshal change failed", zap.Error(err))
		return
	}
	if err := n.pub.Publish(ctx, ChannelPrefix+c.UserID, payload).Err(); err != nil {
		n.log.Warn("publish workspace change failed",
			zap.String("user_id", c.UserID), zap.Error(err))
	}
}
