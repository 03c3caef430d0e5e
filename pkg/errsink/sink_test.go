package errsink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"kubeclient/pkg/errx"
)

type execCall struct {
	query string
	args  []any
}

type fakeConn struct {
	driver.Conn
	execs   []execCall
	execErr error
	batch   *fakeBatch
	closed  bool
}

func (c *fakeConn) Exec(_ context.Context, query string, args ...any) error {
	c.execs = append(c.execs, execCall{query: query, args: args})
	return c.execErr
}

func (c *fakeConn) PrepareBatch(_ context.Context, query string, _ ...driver.PrepareBatchOption) (driver.Batch, error) {
	if c.batch == nil {
		return nil, errors.New("batch unavailable")
	}
	c.batch.query = query
	return c.batch, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type fakeBatch struct {
	driver.Batch
	query   string
	rows    [][]any
	sent    bool
	aborted bool
	sendErr error
}

func (b *fakeBatch) Append(v ...any) error {
	b.rows = append(b.rows, v)
	return nil
}

func (b *fakeBatch) Send() error {
	b.sent = true
	return b.sendErr
}

func (b *fakeBatch) Abort() error {
	b.aborted = true
	return nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestSink(t *testing.T, conn *fakeConn, logger *zap.Logger) *Sink {
	t.Helper()
	sink, err := New(conn, "", logger)
	require.NoError(t, err)
	sink.now = func() time.Time { return fixedNow }
	return sink
}

func TestNewReport(t *testing.T) {
	err := fmt.Errorf("watch pods: %w",
		errx.ReadEvents(io.ErrUnexpectedEOF).WithContextMap(map[string]any{"resource": "pods", "line": 3}))

	r := NewReport(err, fixedNow)
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, fixedNow, r.Time)
	assert.Equal(t, "ReadEvents", r.Kind)
	assert.Equal(t, errx.CodeReadEvents, r.Code)
	assert.Equal(t, errx.DescReadEvents, r.Category)
	assert.Equal(t, "Error reading events stream: unexpected EOF", r.Message)
	assert.Equal(t, "retry", r.Action)
	assert.Equal(t, []string{
		"watch pods: Error reading events stream: unexpected EOF",
		"Error reading events stream: unexpected EOF",
		"unexpected EOF",
	}, r.Chain)
	assert.Equal(t, map[string]string{"resource": "pods", "line": "3"}, r.Context)
	assert.Contains(t, r.Debug, "code="+errx.CodeReadEvents)
}

func TestNewReport_API(t *testing.T) {
	r := NewReport(errx.API(metav1.Status{Reason: metav1.StatusReasonGone, Code: 410, Message: "gone"}), fixedNow)
	assert.Equal(t, int32(410), r.StatusCode)
	assert.Equal(t, "resync", r.Action)
}

func TestNewReport_PlainError(t *testing.T) {
	r := NewReport(errors.New("plain"), fixedNow)
	assert.Empty(t, r.Kind)
	assert.Empty(t, r.Code)
	assert.Equal(t, "plain", r.Message)
	assert.Equal(t, []string{"plain"}, r.Chain)
}

func TestNew_TableValidation(t *testing.T) {
	tests := []struct {
		table   string
		wantErr bool
	}{
		{"", false},
		{"errors", false},
		{"diag.kubeclient_errors", false},
		{"errors; DROP TABLE x", true},
		{"1errors", true},
		{"a.b.c", true},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			_, err := New(&fakeConn{}, tt.table, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTable)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSink_EnsureTable(t *testing.T) {
	conn := &fakeConn{}
	sink := newTestSink(t, conn, nil)

	require.NoError(t, sink.EnsureTable(context.Background()))
	require.Len(t, conn.execs, 1)
	assert.Contains(t, conn.execs[0].query, "CREATE TABLE IF NOT EXISTS kubeclient_errors")

	conn.execErr = errors.New("readonly")
	assert.ErrorContains(t, sink.EnsureTable(context.Background()), "readonly")
}

func TestSink_Write(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	conn := &fakeConn{}
	sink := newTestSink(t, conn, zap.New(core))

	id, err := sink.Write(context.Background(), errx.TLSRequired().WithContext("host", "https://h:6443"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	require.Len(t, conn.execs, 1)
	call := conn.execs[0]
	assert.Contains(t, call.query, "INSERT INTO kubeclient_errors")
	require.Len(t, call.args, 11)
	assert.Equal(t, id, call.args[0])
	assert.Equal(t, fixedNow, call.args[1])
	assert.Equal(t, "TlsRequired", call.args[2])
	assert.Equal(t, errx.CodeTLSRequired, call.args[3])
	assert.Equal(t, "fail-fast", call.args[6])
	assert.Equal(t, map[string]string{"host": "https://h:6443"}, call.args[9])
	assert.Equal(t, 1, logs.FilterMessage("wrote error report").Len())
}

func TestSink_WriteNil(t *testing.T) {
	conn := &fakeConn{}
	sink := newTestSink(t, conn, nil)

	id, err := sink.Write(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)
	assert.Empty(t, conn.execs)
}

func TestSink_WriteFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	conn := &fakeConn{execErr: errors.New("connection reset")}
	sink := newTestSink(t, conn, zap.New(core))

	id, err := sink.Write(context.Background(), errx.Serde(errors.New("eof")))
	assert.Equal(t, uuid.Nil, id)
	assert.ErrorContains(t, err, "connection reset")
	assert.Equal(t, 1, logs.FilterMessage("failed to write error report").Len())
}

func TestSink_WriteBatch(t *testing.T) {
	t.Run("sends non-nil errors", func(t *testing.T) {
		batch := &fakeBatch{}
		sink := newTestSink(t, &fakeConn{batch: batch}, nil)

		ids, err := sink.WriteBatch(context.Background(), []error{
			errx.Serde(errors.New("eof")),
			nil,
			errx.Discovery(errx.MissingKind("Widget")),
		})
		require.NoError(t, err)
		assert.Len(t, ids, 2)
		assert.True(t, batch.sent)
		require.Len(t, batch.rows, 2)
		assert.Equal(t, "SerdeError", batch.rows[0][2])
		assert.Equal(t, "Discovery", batch.rows[1][2])
		assert.Contains(t, batch.query, "INSERT INTO kubeclient_errors")
	})

	t.Run("empty batch is aborted", func(t *testing.T) {
		batch := &fakeBatch{}
		sink := newTestSink(t, &fakeConn{batch: batch}, nil)

		ids, err := sink.WriteBatch(context.Background(), []error{nil})
		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.True(t, batch.aborted)
		assert.False(t, batch.sent)
	})

	t.Run("send failure", func(t *testing.T) {
		batch := &fakeBatch{sendErr: errors.New("timeout")}
		sink := newTestSink(t, &fakeConn{batch: batch}, nil)

		_, err := sink.WriteBatch(context.Background(), []error{errx.TLSRequired()})
		assert.ErrorContains(t, err, "send batch")
	})

	t.Run("prepare failure", func(t *testing.T) {
		sink := newTestSink(t, &fakeConn{}, nil)
		_, err := sink.WriteBatch(context.Background(), []error{errx.TLSRequired()})
		assert.ErrorContains(t, err, "prepare batch")
	})
}

func TestSink_Close(t *testing.T) {
	conn := &fakeConn{}
	sink := newTestSink(t, conn, nil)
	require.NoError(t, sink.Close())
	assert.True(t, conn.closed)
}

func TestOpen_NoAddr(t *testing.T) {
	_, err := Open(context.Background(), Options{}, nil)
	assert.ErrorIs(t, err, ErrNoAddr)
}
