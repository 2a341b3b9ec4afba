package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, "booking-payments", New(TypePaymentConfirmed, "SNAP1", map[string]int{"amount": 1})))
	require.NoError(t, r.Publish(ctx, "booking-payments", New(TypePaymentFailed, "SNAP2", nil)))
	require.NoError(t, r.Publish(ctx, "booking-offers", New(TypeOfferCreated, "1", nil)))

	assert.Equal(t, []string{TypePaymentConfirmed, TypePaymentFailed}, r.Types("booking-payments"))
	assert.Equal(t, []string{TypeOfferCreated}, r.Types("booking-offers"))
	assert.Empty(t, r.Types("unknown"))
}

func TestNew_SetsTimestamp(t *testing.T) {
	ev := New(TypeOfferAccepted, "42", nil)
	assert.Equal(t, "42", ev.Key)
	assert.False(t, ev.OccurredAt.IsZero())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), "t", New("x", "k", nil)))
	assert.NoError(t, p.Close())
}

func TestKafkaPublisher_ReusesWriterPerTopic(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, nil)
	w1 := p.writer("a")
	w2 := p.writer("a")
	w3 := p.writer("b")
	assert.Same(t, w1, w2)
	assert.NotSame(t, w1, w3)
	assert.NoError(t, p.Close())
}

func TestEnsureTopics_NoBrokers(t *testing.T) {
	assert.Error(t, EnsureTopics(nil, []string{"x"}, nil))
}
