package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"snapbook/internal/logger"
)

type mockExpirer struct{ mock.Mock }

func (m *mockExpirer) ExpireStaleAttempts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockPurger struct{ mock.Mock }

func (m *mockPurger) PurgePast(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestRunOnce_RunsBothJobs(t *testing.T) {
	exp, pur := &mockExpirer{}, &mockPurger{}
	exp.On("ExpireStaleAttempts", mock.Anything).Return(int64(3), nil).Once()
	pur.On("PurgePast", mock.Anything).Return(int64(1), nil).Once()

	require.NoError(t, NewScheduler(exp, pur, logger.Discard()).RunOnce(context.Background()))
	exp.AssertExpectations(t)
	pur.AssertExpectations(t)
}

func TestRunOnce_StopsOnFailure(t *testing.T) {
	exp, pur := &mockExpirer{}, &mockPurger{}
	exp.On("ExpireStaleAttempts", mock.Anything).Return(int64(0), errors.New("db down")).Once()

	err := NewScheduler(exp, pur, logger.Discard()).RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expire_payment_attempts")
	pur.AssertNotCalled(t, "PurgePast", mock.Anything)
}

func TestSpecsParse(t *testing.T) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for _, spec := range []string{ExpireAttemptsSpec, PurgeAvailSpec} {
		_, err := parser.Parse(spec)
		assert.NoError(t, err, spec)
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&mockExpirer{}, &mockPurger{}, logger.Discard())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}
