// Package errsink persists diagnostic reports of ClientErrors to ClickHouse.
package errsink

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTable is the table reports are written to.
const DefaultTable = "kubeclient_errors"

var (
	ErrInvalidTable = errors.New("invalid table name")
	ErrNoAddr       = errors.New("no clickhouse address")
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Options configures Open.
type Options struct {
	Addr     []string
	Database string
	Username string
	Password string
	Table    string
	Timeout  time.Duration
}

// Sink writes reports through a ClickHouse connection.
type Sink struct {
	conn   driver.Conn
	table  string
	logger *zap.Logger
	now    func() time.Time
}

// Open connects to ClickHouse and verifies the connection.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Sink, error) {
	if len(opts.Addr) == 0 {
		return nil, ErrNoAddr
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: opts.Addr,
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		DialTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	return New(conn, opts.Table, logger)
}

// New returns a sink over an open connection. An empty table uses DefaultTable.
func New(conn driver.Conn, table string, logger *zap.Logger) (*Sink, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{conn: conn, table: table, logger: logger, now: time.Now}, nil
}

// EnsureTable creates the report table if it does not exist.
func (s *Sink) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id UUID,
	time DateTime64(3, 'UTC'),
	kind LowCardinality(String),
	code LowCardinality(String),
	category String,
	message String,
	action LowCardinality(String),
	status_code Int32,
	chain Array(String),
	context Map(String, String),
	debug String
) ENGINE = MergeTree ORDER BY (time, kind)`, s.table)
	if err := s.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *Sink) insertQuery() string {
	return fmt.Sprintf("INSERT INTO %s (id, time, kind, code, category, message, action, status_code, chain, context, debug)", s.table)
}

// Write stores a report for err and returns its ID.
func (s *Sink) Write(ctx context.Context, err error) (uuid.UUID, error) {
	if err == nil {
		return uuid.Nil, nil
	}
	r := NewReport(err, s.now())
	query := s.insertQuery() + " VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	if execErr := s.conn.Exec(ctx, query, r.values()...); execErr != nil {
		s.logger.Warn("failed to write error report", zap.String("report.id", r.ID.String()), zap.Error(execErr))
		return uuid.Nil, fmt.Errorf("insert report: %w", execErr)
	}
	s.logger.Debug("wrote error report", zap.String("report.id", r.ID.String()), zap.String("error.kind", r.Kind))
	return r.ID, nil
}

// WriteBatch stores one report per non-nil error in a single batch.
func (s *Sink) WriteBatch(ctx context.Context, errs []error) ([]uuid.UUID, error) {
	batch, err := s.conn.PrepareBatch(ctx, s.insertQuery())
	if err != nil {
		return nil, fmt.Errorf("prepare batch: %w", err)
	}
	var ids []uuid.UUID
	for _, item := range errs {
		if item == nil {
			continue
		}
		r := NewReport(item, s.now())
		if err := batch.Append(r.values()...); err != nil {
			_ = batch.Abort()
			return nil, fmt.Errorf("append report: %w", err)
		}
		ids = append(ids, r.ID)
	}
	if len(ids) == 0 {
		_ = batch.Abort()
		return nil, nil
	}
	if err := batch.Send(); err != nil {
		return nil, fmt.Errorf("send batch: %w", err)
	}
	return ids, nil
}

// Close closes the connection.
func (s *Sink) Close() error {
	return s.conn.Close()
}

func (r Report) values() []any {
	return []any{r.ID, r.Time, r.Kind, r.Code, r.Category, r.Message, r.Action, r.StatusCode, r.Chain, r.Context, r.Debug}
}
