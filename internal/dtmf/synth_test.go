package dtmf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_LongSequence(t *testing.T) {
	const seq = "0123456789ABCD*#9876543210DCBA#*555"

	g, err := NewGenerator(testConfig())
	require.NoError(t, err)

	d := NewDetector()
	frames := 0
	err = Synthesize(context.Background(), g, seq, func(frame []int16) error {
		require.Len(t, frame, testFrameSize)
		frames++
		d.Detect(frame)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, seq, d.Result())
	assert.Equal(t, len(seq)*(testToneFrames+testPauseFrames), frames)
	assert.True(t, g.Ready())
}

func TestSynthesize_Errors(t *testing.T) {
	noop := func([]int16) error { return nil }

	t.Run("invalid symbol", func(t *testing.T) {
		g, err := NewGenerator(testConfig())
		require.NoError(t, err)
		err = Synthesize(context.Background(), g, "12?", noop)
		assert.ErrorIs(t, err, ErrInvalidSymbol)
	})

	t.Run("busy", func(t *testing.T) {
		g, err := NewGenerator(testConfig())
		require.NoError(t, err)
		_, err = g.Submit("1")
		require.NoError(t, err)
		err = Synthesize(context.Background(), g, "2", noop)
		assert.ErrorIs(t, err, ErrBusy)
	})

	t.Run("cancelled", func(t *testing.T) {
		g, err := NewGenerator(testConfig())
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = Synthesize(ctx, g, "123", noop)
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, g.Ready())
	})

	t.Run("emit fails", func(t *testing.T) {
		g, err := NewGenerator(testConfig())
		require.NoError(t, err)
		sinkErr := errors.New("sink closed")
		calls := 0
		err = Synthesize(context.Background(), g, "123", func([]int16) error {
			calls++
			if calls == 4 {
				return sinkErr
			}
			return nil
		})
		assert.ErrorIs(t, err, sinkErr)
		assert.Equal(t, 4, calls)
		assert.True(t, g.Ready())
	})
}

func TestSynthesize_Empty(t *testing.T) {
	g, err := NewGenerator(testConfig())
	require.NoError(t, err)
	err = Synthesize(context.Background(), g, " - ", func([]int16) error {
		t.Error("no frames expected")
		return nil
	})
	assert.NoError(t, err)
}
