package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Comcast/automata/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpl(t *testing.T) {
	var _ Storage = &NoopStorage{}
	var _ Storage = NewMemStorage()
}

func TestNewRun(t *testing.T) {
	a, err := core.OddZerosDefinition().Compile()
	require.NoError(t, err)

	in := core.Symbols("0", "1")
	r := NewRun(a, in, true, nil)
	in[0] = "1"
	assert.Equal(t, "odd-zeros", r.Automaton)
	assert.Equal(t, core.DFA, r.Kind)
	assert.Equal(t, core.Symbols("0", "1"), r.Input)
	assert.True(t, r.Accepted)
	assert.Empty(t, r.Error)

	r = NewRun(a, nil, false, errors.New("bad input"))
	assert.Equal(t, "bad input", r.Error)
	assert.NotNil(t, r.Input)
}

func TestMem(t *testing.T) {
	ctx := context.Background()
	s := NewMemStorage()
	require.NoError(t, s.Open(ctx))
	defer s.Close(ctx)

	t0 := time.Now().UTC()
	for i, in := range []string{"0", "1", "00"} {
		r := &Run{
			Automaton: "odd-zeros",
			Input:     core.Symbols(in),
			At:        t0.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.Record(ctx, r))
		assert.NotEmpty(t, r.Id)
	}
	require.NoError(t, s.Record(ctx, &Run{Automaton: "other", At: t0}))

	runs, err := s.Runs(ctx, "odd-zeros", 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, core.Symbols("0"), runs[0].Input)

	runs, err = s.Runs(ctx, "odd-zeros", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, core.Symbols("1"), runs[0].Input)

	n, err := s.Prune(ctx, t0.Add(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	runs, err = s.Runs(ctx, "odd-zeros", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, core.Symbols("00"), runs[0].Input)

	runs, err = s.Runs(ctx, "other", 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
