// Package session is the call surface shared by the command line tool and
// the shared library. A Session holds one network and the configuration
// of the calls made against it, and wraps every call with logging,
// metrics and a trace span.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/gridframe/gridframe/pkg/config"
	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/logger"
	"github.com/gridframe/gridframe/pkg/mappers"
	"github.com/gridframe/gridframe/pkg/metrics"
	"github.com/gridframe/gridframe/pkg/network"
	"github.com/gridframe/gridframe/pkg/observability"
)

// Session serializes calls against one network.
type Session struct {
	mu      sync.Mutex
	network *network.Network
	cfg     *config.Config
}

// New returns a session over n. A nil cfg uses config.NewDefault.
func New(n *network.Network, cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	return &Session{network: n, cfg: cfg}
}

// Open loads a network file into a new session.
func Open(path string, cfg *config.Config) (*Session, error) {
	n, err := network.LoadFile(path)
	if err != nil {
		return nil, err
	}
	logger.Get().Debug("network loaded",
		zap.String("network_id", n.ID),
		zap.String("path", path),
		zap.Int("buses", len(n.Buses())),
	)
	return New(n, cfg), nil
}

// Network returns the session network. Callers must not mutate it while a
// call is running.
func (s *Session) Network() *network.Network { return s.network }

// Config returns the session configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Save writes the network to path.
func (s *Session) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return network.SaveFile(path, s.network)
}

// Series returns the static series metadata of an element type.
func (s *Session) Series(et mappers.ElementType) ([]dataframe.SeriesMetadata, error) {
	m, err := mappers.For(et)
	if err != nil {
		return nil, err
	}
	return m.SeriesMetadata(), nil
}

type call struct {
	ctx       context.Context
	operation string
	et        mappers.ElementType
	timer     *metrics.Timer
	finish    func(error)
}

func (s *Session) begin(ctx context.Context, operation string, et mappers.ElementType) *call {
	ctx = logger.WithValue(ctx, logger.CallIDKey, uuid.NewString())
	ctx = logger.WithValue(ctx, logger.ElementTypeKey, et.String())
	ctx = logger.WithValue(ctx, logger.NetworkIDKey, s.network.ID)
	ctx, span := observability.StartSpan(ctx, "gridframe."+operation,
		attribute.String("element_type", et.String()),
		attribute.String("network_id", s.network.ID),
		attribute.Bool("per_unit", s.cfg.Units.PerUnit),
	)
	c := &call{ctx: ctx, operation: operation, et: et, timer: metrics.NewTimer()}
	c.finish = func(err error) { observability.EndSpan(span, err) }
	return c
}

func (s *Session) end(c *call, rows int, err error, fields ...zap.Field) {
	d := c.timer.Stop()
	if s.cfg.Observability.EnableMetrics {
		metrics.ObserveOperation(c.operation, c.et.String(), d, err)
	}
	log := logger.WithContext(c.ctx)
	if err != nil {
		log.Error(c.operation+" failed", append(logger.ErrorFields(err), zap.Duration("duration", d))...)
	} else {
		log.Debug(c.operation+" completed",
			append(fields, zap.Int("rows", rows), zap.Duration("duration", d))...)
	}
	c.finish(err)
}

// Get materializes filter f of element type et into h and returns the
// number of rows.
func (s *Session) Get(ctx context.Context, et mappers.ElementType, f dataframe.Filter, h dataframe.Handler) (rows int, err error) {
	m, err := mappers.For(et)
	if err != nil {
		return 0, err
	}
	f = s.cfg.Dataframe.Apply(f)

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.begin(ctx, "get", et)
	defer func() {
		s.end(c, rows, err, zap.String("filter_mode", f.Mode.String()), zap.Int("attributes", len(f.Attributes)))
	}()

	rows, err = m.Materialize(s.network, f, s.cfg.Units.Context(), h)
	if err == nil && s.cfg.Observability.EnableMetrics {
		metrics.RowsMaterialized.WithLabelValues(et.String()).Add(float64(rows))
	}
	return rows, err
}

// Collect is Get into an in-memory collector.
func (s *Session) Collect(ctx context.Context, et mappers.ElementType, f dataframe.Filter) (*dataframe.Collector, error) {
	c := dataframe.NewCollector()
	if _, err := s.Get(ctx, et, f, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies df to elements of type et and returns the number of rows
// applied. On a setter failure the rows before the failing one stay
// applied.
func (s *Session) Update(ctx context.Context, et mappers.ElementType, df dataframe.UpdatingDataframe) (rows int, err error) {
	m, err := mappers.For(et)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.begin(ctx, "update", et)
	defer func() {
		s.end(c, rows, err, zap.Int("columns", len(df.Columns())))
	}()

	rows, err = m.Update(s.network, df, s.cfg.Units.Context())
	if s.cfg.Observability.EnableMetrics && rows > 0 {
		metrics.RowsUpdated.WithLabelValues(et.String()).Add(float64(rows))
	}
	return rows, err
}
