package session

import (
	"context"
	"log"
	"time"

	"quizclash/internal/model"
)

// Actions are the mutations the controller may issue. Advance is always
// issued as the host; SubmitAnswer only ever records the no-answer sentinel
// into the affected participant's own row.
type Actions interface {
	Advance(ctx context.Context, code, playerID string, nextIndex int) error
	SubmitAnswer(ctx context.Context, code, playerID string, index, selected int) error
}

const defaultTickInterval = 200 * time.Millisecond

// Controller drives question progression for one room. It holds no state of
// its own beyond per-question bookkeeping: every decision is taken against
// the latest full snapshot, and every write is gated on the host being
// connected. When the host is away the session stalls; answers submitted in
// the meantime are preserved.
type Controller struct {
	code    string
	policy  Policy
	actions Actions
	tick    time.Duration

	snap *model.Snapshot

	// bookkeeping for the question currently tracked
	trackedIndex int
	trackedStart time.Time
	advanceAt    time.Time
	advanced     bool
	sentinels    bool
}

// NewController creates a controller for one room.
func NewController(code string, policy Policy, actions Actions) *Controller {
	return &Controller{
		code:         code,
		policy:       policy,
		actions:      actions,
		tick:         defaultTickInterval,
		trackedIndex: -1,
	}
}

// Run consumes snapshots until the context ends or the channel closes.
// Timing decisions happen on the internal tick, not on snapshot arrival, so
// a quiet room still advances when its countdown expires.
func (c *Controller) Run(ctx context.Context, snapshots <-chan *model.Snapshot) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			c.observe(snap)
			c.evaluate(ctx, time.Now())
		case now := <-ticker.C:
			c.evaluate(ctx, now)
		}
	}
}

func (c *Controller) observe(snap *model.Snapshot) {
	c.snap = snap
	if snap == nil || snap.Room == nil || !snap.Room.Status.Active() {
		c.resetQuestion(-1, time.Time{})
		return
	}
	cur := snap.Room.Cursor
	if cur.QuestionIndex != c.trackedIndex || !cur.QuestionStartedAt.Equal(c.trackedStart) {
		// New question (or a restart re-anchored the same index).
		c.resetQuestion(cur.QuestionIndex, cur.QuestionStartedAt)
	}
}

func (c *Controller) resetQuestion(index int, start time.Time) {
	c.trackedIndex = index
	c.trackedStart = start
	c.advanceAt = time.Time{}
	c.advanced = false
	c.sentinels = false
}

func (c *Controller) evaluate(ctx context.Context, now time.Time) {
	snap := c.snap
	if snap == nil || snap.Room == nil || !snap.Room.Status.Active() {
		return
	}
	room := snap.Room
	index := room.Cursor.QuestionIndex

	if c.policy.AllAnswered(snap.Participants, index) {
		c.maybeAdvance(ctx, room, index, now)
		return
	}

	if c.policy.HasTimer() && !c.sentinels {
		deadline := room.Cursor.QuestionStartedAt.Add(c.policy.QuestionBudget(room.Settings))
		if !now.Before(deadline) {
			c.submitSentinels(ctx, snap, index)
			c.sentinels = true
		}
	}
}

// maybeAdvance waits out the results pause, then issues the cursor write as
// the host. If the host is disconnected nothing moves until they return.
func (c *Controller) maybeAdvance(ctx context.Context, room *model.Room, index int, now time.Time) {
	if !c.policy.AutoAdvance() || c.advanced {
		return
	}
	if c.advanceAt.IsZero() {
		pause := c.policy.ResultsPause()
		if c.sentinels {
			pause = c.policy.TimeoutPause()
		}
		c.advanceAt = now.Add(pause)
		return
	}
	if now.Before(c.advanceAt) {
		return
	}
	if !c.snap.HostConnected() {
		return
	}
	if err := c.actions.Advance(ctx, c.code, room.HostID, index+1); err != nil {
		log.Printf("room %s: advancing to %d: %v", c.code, index+1, err)
		return
	}
	c.advanced = true
}

// submitSentinels records a no-answer response for everyone still missing
// one, so the all-answered condition can complete even with an unresponsive
// participant.
func (c *Controller) submitSentinels(ctx context.Context, snap *model.Snapshot, index int) {
	for _, p := range snap.Participants {
		if p.HasAnswered(index) {
			continue
		}
		if err := c.actions.SubmitAnswer(ctx, c.code, p.PlayerID, index, model.NoAnswerSentinel); err != nil {
			log.Printf("room %s: sentinel for %s at %d: %v", c.code, p.PlayerID, index, err)
		}
	}
}
