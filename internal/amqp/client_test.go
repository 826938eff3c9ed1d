package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{-1, time.Second},
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{40, 30 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.True(t, isConnectionError(errDeliveriesClosed))
	assert.True(t, isConnectionError(errors.New("Exception (504) Reason: \"channel/connection is not open\"")))
	assert.True(t, isConnectionError(errors.New("dial tcp 127.0.0.1:5672: connect: connection refused")))
	assert.False(t, isConnectionError(errors.New("ACCESS_REFUSED - login was refused")))
}

func TestEntryAppendedMessage(t *testing.T) {
	values := []string{"2024-05-01", "120", "餐飲"}
	msg := NewEntryAppendedMessage("data", values)
	values[0] = "changed"
	assert.Equal(t, "2024-05-01", msg.Values[0], "values are copied")
	assert.False(t, msg.AppendedAt.IsZero())

	body, err := msg.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"table":"data"`)

	decoded, err := EntryAppendedMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, msg.Values, decoded.Values)
	assert.True(t, msg.AppendedAt.Equal(decoded.AppendedAt))

	_, err = EntryAppendedMessageFromJSON([]byte(`{"values":["x"]}`))
	assert.Error(t, err, "a message must name its table")
	_, err = EntryAppendedMessageFromJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestHandleOutcome(t *testing.T) {
	ctx := context.Background()
	body, err := NewEntryAppendedMessage("stock", []string{"AAPL"}).ToJSON()
	require.NoError(t, err)

	var seen string
	ok := func(_ context.Context, m *EntryAppendedMessage) error {
		seen = m.Table
		return nil
	}
	failing := func(context.Context, *EntryAppendedMessage) error { return errors.New("disk full") }

	assert.Equal(t, ack, handle(ctx, body, ok))
	assert.Equal(t, "stock", seen)
	assert.Equal(t, requeue, handle(ctx, body, failing))
	assert.Equal(t, drop, handle(ctx, []byte("{"), ok))
}

func TestConsumeWithRetry_StopsOnPermanentError(t *testing.T) {
	ctx := context.Background()
	calls := 0
	err := ConsumeWithRetry(ctx, func() (*Client, error) {
		calls++
		return nil, errors.New("ACCESS_REFUSED")
	}, nil)
	assert.EqualError(t, err, "ACCESS_REFUSED")
	assert.Equal(t, 1, calls)
}

func TestConsumeWithRetry_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := ConsumeWithRetry(ctx, func() (*Client, error) {
		calls++
		cancel()
		return nil, errors.New("dial tcp: connection refused")
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestAuditor(t *testing.T) {
	ctx := context.Background()
	a := NewAuditor(nil)

	require.NoError(t, a.Handle(ctx, NewEntryAppendedMessage("data", []string{"2024-05-01", "120"})))
	require.NoError(t, a.Handle(ctx, NewEntryAppendedMessage("data", []string{"2024-05-02", "30"})))
	require.NoError(t, a.Handle(ctx, NewEntryAppendedMessage("stock", []string{"AAPL"})))

	counts := a.Counts()
	assert.Equal(t, map[string]int{"data": 2, "stock": 1}, counts)
	counts["data"] = 99
	assert.Equal(t, 2, a.Counts()["data"], "Counts returns a copy")
}
