package sql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Connector provides the dedicated connections used by generated mappers.
// *Driver, *StatsDriver and *DebugDriver implement it.
type Connector interface {
	Dialect() string
	Conn(ctx context.Context) (*sql.Conn, func() error, error)
}

// ConnStats holds connection usage statistics. A connection is held from
// Conn until its release function returns, which spans every statement a
// mapper method runs.
type ConnStats struct {
	// Acquired is the number of connections handed out.
	Acquired atomic.Int64
	// InUse is the number of connections not released yet.
	InUse atomic.Int64
	// Held is the total time connections were held.
	Held atomic.Int64 // nanoseconds
	// Slow is the count of connections held longer than the slow threshold.
	Slow atomic.Int64
	// Errors is the count of failed acquisitions and releases.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *ConnStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		Acquired: s.Acquired.Load(),
		InUse:    s.InUse.Load(),
		Held:     time.Duration(s.Held.Load()),
		Slow:     s.Slow.Load(),
		Errors:   s.Errors.Load(),
	}
}

// Reset resets the counters to zero. InUse is kept.
func (s *ConnStats) Reset() {
	s.Acquired.Store(0)
	s.Held.Store(0)
	s.Slow.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of connection statistics.
type StatsSnapshot struct {
	Acquired int64
	InUse    int64
	Held     time.Duration
	Slow     int64
	Errors   int64
}

// AvgHeld returns the average time a released connection was held.
func (s StatsSnapshot) AvgHeld() time.Duration {
	released := s.Acquired - s.InUse
	if released <= 0 {
		return 0
	}
	return s.Held / time.Duration(released)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"acquired=%d in_use=%d held=%s avg=%s slow=%d errors=%d",
		s.Acquired, s.InUse, s.Held, s.AvgHeld(), s.Slow, s.Errors,
	)
}

// SlowConnHook is called when a connection was held longer than the slow
// threshold.
type SlowConnHook func(ctx context.Context, dialect string, held time.Duration)

// StatsDriver wraps a Connector with connection statistics collection.
type StatsDriver struct {
	Connector
	stats         *ConnStats
	slowThreshold time.Duration
	slowHook      SlowConnHook
	mu            sync.RWMutex
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the threshold for slow connection detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowConnHook sets a callback function for slow connections.
func WithSlowConnHook(hook SlowConnHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowConnLog logs slow connections to the default logger.
func WithSlowConnLog() StatsOption {
	return WithSlowConnHook(func(_ context.Context, dialect string, held time.Duration) {
		slog.Warn("slow mapper call detected", "dialect", dialect, "held", held)
	})
}

// NewStatsDriver wraps a Connector with statistics collection.
//
// Example:
//
//	drv, _ := sql.Open("postgres", dsn)
//	stats := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowConnLog(),
//	)
//	reg := csr.NewRegistry(csr.WithConnector(stats))
//
//	// Later, check statistics:
//	fmt.Println(stats.ConnStats().Stats())
func NewStatsDriver(c Connector, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Connector:     c,
		stats:         &ConnStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConnStats returns the underlying ConnStats for reading statistics.
func (d *StatsDriver) ConnStats() *ConnStats {
	return d.stats
}

// SlowThreshold returns the current slow connection threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold updates the slow connection threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// Conn acquires a connection and records how long it is held.
func (d *StatsDriver) Conn(ctx context.Context) (*sql.Conn, func() error, error) {
	start := time.Now()
	conn, release, err := d.Connector.Conn(ctx)
	if err != nil {
		d.stats.Errors.Add(1)
		return nil, nil, err
	}
	d.stats.Acquired.Add(1)
	d.stats.InUse.Add(1)
	var once sync.Once
	return conn, func() error {
		err := release()
		once.Do(func() { d.record(ctx, start, err) })
		return err
	}, nil
}

func (d *StatsDriver) record(ctx context.Context, start time.Time, err error) {
	held := time.Since(start)
	d.stats.InUse.Add(-1)
	d.stats.Held.Add(int64(held))
	if err != nil {
		d.stats.Errors.Add(1)
	}

	d.mu.RLock()
	threshold := d.slowThreshold
	hook := d.slowHook
	d.mu.RUnlock()

	if held > threshold {
		d.stats.Slow.Add(1)
		if hook != nil {
			hook(ctx, d.Dialect(), held)
		}
	}
}

// DebugDriver wraps a Connector with debug logging.
type DebugDriver struct {
	Connector
	log func(context.Context, ...any)
}

// DebugOption configures the DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLog sets a custom log function.
func DebugWithLog(logFunc func(context.Context, ...any)) DebugOption {
	return func(d *DebugDriver) {
		d.log = logFunc
	}
}

// NewDebugDriver wraps a Connector with debug logging.
func NewDebugDriver(c Connector, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Connector: c,
		log: func(_ context.Context, v ...any) {
			slog.Info(fmt.Sprint(v...))
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Conn acquires a connection and logs its acquisition and release.
func (d *DebugDriver) Conn(ctx context.Context) (*sql.Conn, func() error, error) {
	conn, release, err := d.Connector.Conn(ctx)
	if err != nil {
		d.log(ctx, fmt.Sprintf("acquire %s connection: %v", d.Dialect(), err))
		return nil, nil, err
	}
	d.log(ctx, fmt.Sprintf("acquire %s connection", d.Dialect()))
	return conn, func() error {
		d.log(ctx, fmt.Sprintf("release %s connection", d.Dialect()))
		return release()
	}, nil
}

var (
	_ Connector = (*Driver)(nil)
	_ Connector = (*StatsDriver)(nil)
	_ Connector = (*DebugDriver)(nil)
)

// OpenWithStats opens a database with statistics collection enabled.
func OpenWithStats(driverName, source string, opts ...StatsOption) (*StatsDriver, error) {
	drv, err := Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return NewStatsDriver(drv, opts...), nil
}
