package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/revenuemediabot/DailycheckBot2025/internal/metrics"
)

// Options configures the gateway.
type Options struct {
	// OpTimeout bounds every single tier call. A hanging tier is treated
	// as unavailable after this long instead of stalling the caller.
	OpTimeout time.Duration
	// ProbeInterval is the background re-probe schedule for unavailable
	// tiers. Zero disables the prober (tests drive ProbeOnce directly).
	ProbeInterval time.Duration
	// Metrics may be nil.
	Metrics *metrics.Metrics
}

const defaultOpTimeout = 3 * time.Second

// Gateway fronts an ordered list of tiers. Reads go to the
// highest-priority tier that is not unavailable; on failure the tier is
// demoted and the next one is tried synchronously within the same
// operation. Writes go through to every working tier; a tier that
// missed a write gets a replay entry and converges once it recovers.
type Gateway struct {
	opTimeout  time.Duration
	probeEvery time.Duration
	mets       *metrics.Metrics

	mu    sync.Mutex
	slots []*tierSlot

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type tierSlot struct {
	tier   Tier
	state  TierState
	replay map[string][]*Record // pending replay per user, in order
}

// NewGateway builds a gateway over tiers in priority order and starts the
// background prober if an interval is configured.
func NewGateway(tiers []Tier, opts Options) *Gateway {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}
	g := &Gateway{
		opTimeout:  opts.OpTimeout,
		probeEvery: opts.ProbeInterval,
		mets:       opts.Metrics,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, t := range tiers {
		g.slots = append(g.slots, &tierSlot{
			tier:   t,
			state:  Healthy,
			replay: make(map[string][]*Record),
		})
	}
	if g.probeEvery > 0 {
		go g.prober()
	} else {
		close(g.done)
	}
	return g
}

// Close stops the background prober.
func (g *Gateway) Close() {
	g.stopOnce.Do(func() { close(g.stop) })
	<-g.done
}

// Load returns the user's snapshot from the highest working tier. A
// not-found answer from a working tier is authoritative and does not
// fall through.
func (g *Gateway) Load(ctx context.Context, userID string) (*Record, error) {
	for i := range g.slots {
		if g.stateOf(i) == Unavailable {
			continue
		}
		var rec *Record
		err := g.call(ctx, func(c context.Context) error {
			var e error
			rec, e = g.slots[i].tier.Load(c, userID)
			return e
		})
		switch {
		case err == nil:
			return rec, nil
		case errors.Is(err, ErrNotFound):
			return nil, ErrNotFound
		case ctx.Err() != nil:
			return nil, fmt.Errorf("load progress: %w", ctx.Err())
		default:
			g.markUnavailable(i, err)
		}
	}
	return nil, ErrAllTiersUnavailable
}

// Save writes through to every working tier so a later failover still
// sees the current state. Tiers that are down or fail mid-write get a
// replay entry and converge once they recover. The operation succeeds
// when at least one tier took the write; if none did, the error is
// fatal and nothing is queued anywhere.
func (g *Gateway) Save(ctx context.Context, rec *Record) error {
	var missed []int
	saved := false
	for i := range g.slots {
		if g.stateOf(i) == Unavailable {
			missed = append(missed, i)
			continue
		}
		err := g.call(ctx, func(c context.Context) error {
			return g.slots[i].tier.Save(c, rec)
		})
		if err == nil {
			saved = true
			continue
		}
		if ctx.Err() != nil {
			return fmt.Errorf("save progress: %w", ctx.Err())
		}
		g.markUnavailable(i, err)
		missed = append(missed, i)
	}
	if !saved {
		return ErrAllTiersUnavailable
	}
	for _, i := range missed {
		g.queueReplay(i, rec)
	}
	return nil
}

// Delete removes the user's snapshot from every reachable tier and
// queues tombstones for unreachable ones. Fails only when no tier could
// be reached at all.
func (g *Gateway) Delete(ctx context.Context, userID string) error {
	tomb := &Record{UserID: userID, Deleted: true, UpdatedAt: time.Now().UTC()}
	deleted := false
	for i := range g.slots {
		if g.stateOf(i) == Unavailable {
			g.queueReplay(i, tomb)
			continue
		}
		err := g.call(ctx, func(c context.Context) error {
			return g.slots[i].tier.Delete(c, userID)
		})
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("delete progress: %w", ctx.Err())
			}
			g.markUnavailable(i, err)
			g.queueReplay(i, tomb)
			continue
		}
		deleted = true
	}
	if !deleted {
		return ErrAllTiersUnavailable
	}
	return nil
}

// Statuses reports the current health of every tier in priority order.
func (g *Gateway) Statuses() []TierStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]TierStatus, 0, len(g.slots))
	for _, s := range g.slots {
		out = append(out, TierStatus{
			Name:          s.tier.Name(),
			State:         s.state,
			PendingReplay: len(s.replay),
		})
	}
	return out
}

// ProbeOnce runs one probe/replay pass. The background prober calls this
// on its schedule; tests call it directly.
func (g *Gateway) ProbeOnce(ctx context.Context) {
	for i := range g.slots {
		switch g.stateOf(i) {
		case Degraded:
			g.drain(ctx, i)
		case Unavailable:
			err := g.call(ctx, func(c context.Context) error {
				return g.slots[i].tier.Probe(c)
			})
			if err != nil {
				continue
			}
			g.setState(i, Degraded)
			g.mets.TierRecovered(g.slots[i].tier.Name())
			log.Info().Str("tier", g.slots[i].tier.Name()).Msg("storage tier recovered")
			g.drain(ctx, i)
		}
	}
}

func (g *Gateway) prober() {
	defer close(g.done)
	ticker := time.NewTicker(g.probeEvery)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.ProbeOnce(context.Background())
		}
	}
}

// drain replays the tier's backlog. The tier goes Healthy once the
// backlog is empty, or back to Unavailable on the first replay failure.
func (g *Gateway) drain(ctx context.Context, i int) {
	name := g.slots[i].tier.Name()
	for {
		rec := g.popReplay(i)
		if rec == nil {
			g.promoteIfDrained(i)
			return
		}
		err := g.call(ctx, func(c context.Context) error {
			if rec.Deleted {
				return g.slots[i].tier.Delete(c, rec.UserID)
			}
			return g.slots[i].tier.Save(c, rec)
		})
		if err != nil {
			g.requeueFront(i, rec)
			g.markUnavailable(i, err)
			return
		}
		g.mets.TierReplay(name)
	}
}

func (g *Gateway) call(ctx context.Context, fn func(ctx context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, g.opTimeout)
	defer cancel()
	return fn(cctx)
}

func (g *Gateway) stateOf(i int) TierState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.slots[i].state
}

func (g *Gateway) setState(i int, s TierState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.slots[i].state = s
}

func (g *Gateway) markUnavailable(i int, err error) {
	g.mu.Lock()
	changed := g.slots[i].state != Unavailable
	g.slots[i].state = Unavailable
	name := g.slots[i].tier.Name()
	g.mu.Unlock()
	if changed {
		g.mets.TierFailover(name)
		log.Warn().Err(err).Str("tier", name).Msg("storage tier unavailable")
	}
}

// queueReplay appends rec to the user's pending replay on tier i. A
// tombstone supersedes everything queued before it. A save never
// replaces a pending tombstone: it queues behind it, so the delete
// still lands first and a post-reset snapshot with a restarted version
// is not rejected by the tier's version guard. Between saves, the
// newer version wins.
func (g *Gateway) queueReplay(i int, rec *Record) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pending := g.slots[i].replay[rec.UserID]
	if rec.Deleted {
		g.slots[i].replay[rec.UserID] = []*Record{rec}
		return
	}
	if n := len(pending); n > 0 && !pending[n-1].Deleted {
		if pending[n-1].Version >= rec.Version {
			return
		}
		pending[n-1] = rec
		return
	}
	g.slots[i].replay[rec.UserID] = append(pending, rec)
}

func (g *Gateway) popReplay(i int) *Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	for user, pending := range g.slots[i].replay {
		rec := pending[0]
		if len(pending) == 1 {
			delete(g.slots[i].replay, user)
		} else {
			g.slots[i].replay[user] = pending[1:]
		}
		return rec
	}
	return nil
}

// requeueFront puts a record that failed to replay back at the head of
// its user's queue, ahead of anything queued behind it.
func (g *Gateway) requeueFront(i int, rec *Record) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.slots[i].replay[rec.UserID] = append([]*Record{rec}, g.slots[i].replay[rec.UserID]...)
}

func (g *Gateway) promoteIfDrained(i int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.slots[i].state == Degraded && len(g.slots[i].replay) == 0 {
		g.slots[i].state = Healthy
	}
}
