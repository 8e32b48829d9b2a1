package app

import (
	"sync/atomic"
	"time"

	"github.com/tidwall/sjson"

	"github.com/dshills/keyseq/internal/event/broadcast"
	"github.com/dshills/keyseq/internal/input/source"
	"github.com/dshills/keyseq/internal/logging"
	"github.com/dshills/keyseq/internal/sequence"
)

// Metrics tracks pipeline counters. Lag is recorded live from the channel
// hooks; everything else is collected when a run ends.
type Metrics struct {
	// Input
	keyEvents       atomic.Uint64
	tokensPublished atomic.Uint64
	tokensDiscarded atomic.Uint64
	tokensUnheard   atomic.Uint64

	// Sequence
	tokensApplied    atomic.Uint64
	tokensIgnored    atomic.Uint64
	snapshotsEmitted atomic.Uint64

	// Lag, by channel
	tokensLagged    atomic.Uint64
	snapshotsLagged atomic.Uint64
	lagEvents       atomic.Uint64

	// Consumers
	renders      atomic.Uint64
	hookCalls    atomic.Uint64
	hookFailures atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// RecordLag records skipped values on the named channel.
func (m *Metrics) RecordLag(channel string, skipped uint64) {
	m.lagEvents.Add(1)
	switch channel {
	case "tokens":
		m.tokensLagged.Add(skipped)
	case "snapshots":
		m.snapshotsLagged.Add(skipped)
	}
}

// lagHook returns a broadcast lag hook that records and logs lag.
func (m *Metrics) lagHook(channel string, logger *logging.Logger) func(string, uint64) {
	return func(receiverID string, skipped uint64) {
		m.RecordLag(channel, skipped)
		logger.WithField("receiver", receiverID).Warn("%s receiver lagged by %d", channel, skipped)
	}
}

// PipelineStats gathers component statistics at the end of a run.
type PipelineStats struct {
	Source       source.Stats
	Tokens       broadcast.Stats
	Snapshots    broadcast.Stats
	Sequence     sequence.Stats
	Renders      uint64
	HookCalls    uint64
	HookFailures uint64
}

// Collect stores component statistics.
func (m *Metrics) Collect(s PipelineStats) {
	m.keyEvents.Store(s.Source.KeyEvents)
	m.tokensPublished.Store(s.Source.Published)
	m.tokensDiscarded.Store(s.Source.Discarded)
	m.tokensUnheard.Store(s.Tokens.NoReceivers)
	m.tokensApplied.Store(s.Sequence.Applied)
	m.tokensIgnored.Store(s.Sequence.Ignored)
	m.snapshotsEmitted.Store(s.Sequence.Emitted)
	m.renders.Store(s.Renders)
	m.hookCalls.Store(s.HookCalls)
	m.hookFailures.Store(s.HookFailures)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Uptime:           time.Since(m.startTime),
		KeyEvents:        m.keyEvents.Load(),
		TokensPublished:  m.tokensPublished.Load(),
		TokensDiscarded:  m.tokensDiscarded.Load(),
		TokensUnheard:    m.tokensUnheard.Load(),
		TokensApplied:    m.tokensApplied.Load(),
		TokensIgnored:    m.tokensIgnored.Load(),
		SnapshotsEmitted: m.snapshotsEmitted.Load(),
		TokensLagged:     m.tokensLagged.Load(),
		SnapshotsLagged:  m.snapshotsLagged.Load(),
		LagEvents:        m.lagEvents.Load(),
		Renders:          m.renders.Load(),
		HookCalls:        m.hookCalls.Load(),
		HookFailures:     m.hookFailures.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	for _, c := range []*atomic.Uint64{
		&m.keyEvents, &m.tokensPublished, &m.tokensDiscarded, &m.tokensUnheard,
		&m.tokensApplied, &m.tokensIgnored, &m.snapshotsEmitted,
		&m.tokensLagged, &m.snapshotsLagged, &m.lagEvents,
		&m.renders, &m.hookCalls, &m.hookFailures,
	} {
		c.Store(0)
	}
	m.startTime = time.Now()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime           time.Duration
	KeyEvents        uint64
	TokensPublished  uint64
	TokensDiscarded  uint64
	TokensUnheard    uint64
	TokensApplied    uint64
	TokensIgnored    uint64
	SnapshotsEmitted uint64
	TokensLagged     uint64
	SnapshotsLagged  uint64
	LagEvents        uint64
	Renders          uint64
	HookCalls        uint64
	HookFailures     uint64
}

// JSON renders the snapshot as a nested JSON object.
func (s MetricsSnapshot) JSON() ([]byte, error) {
	fields := []struct {
		path  string
		value any
	}{
		{"uptime_ms", s.Uptime.Milliseconds()},
		{"input.key_events", s.KeyEvents},
		{"input.discarded", s.TokensDiscarded},
		{"tokens.published", s.TokensPublished},
		{"tokens.unheard", s.TokensUnheard},
		{"tokens.lagged", s.TokensLagged},
		{"sequence.applied", s.TokensApplied},
		{"sequence.ignored", s.TokensIgnored},
		{"snapshots.emitted", s.SnapshotsEmitted},
		{"snapshots.lagged", s.SnapshotsLagged},
		{"lag_events", s.LagEvents},
		{"consumers.renders", s.Renders},
		{"consumers.hook.calls", s.HookCalls},
		{"consumers.hook.failures", s.HookFailures},
	}

	out := []byte(`{}`)
	for _, f := range fields {
		var err error
		if out, err = sjson.SetBytes(out, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return out, nil
}
