package expiry

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls int
	n     int64
	err   error
}

func (f *fakeExpirer) ExpireOverdue(context.Context) (int64, error) {
	f.calls++
	return f.n, f.err
}

func TestSweeperRun(t *testing.T) {
	f := &fakeExpirer{n: 3}
	s, err := New(f, "@hourly", zerolog.Nop())
	require.NoError(t, err)

	s.Run()
	s.Run()
	assert.Equal(t, 2, f.calls)
}

func TestSweeperRunSurvivesErrors(t *testing.T) {
	f := &fakeExpirer{err: errors.New("db down")}
	s, err := New(f, "@every 1h", zerolog.Nop())
	require.NoError(t, err)

	s.Run()
	assert.Equal(t, 1, f.calls)
}

func TestSweeperRejectsBadSchedule(t *testing.T) {
	_, err := New(&fakeExpirer{}, "not a schedule", zerolog.Nop())
	assert.Error(t, err)
}
