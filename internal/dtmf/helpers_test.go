package dtmf

import (
	"github.com/stretchr/testify/require"
)

// Framing used by the original round-trip check: 160-sample frames, 40 ms tones
// and 20 ms pauses.
const (
	testFrameSize   = 160
	testToneFrames  = 3
	testPauseFrames = 2
)

// tb is the part of testing.TB that *rapid.T also provides.
type tb interface {
	Helper()
	require.TestingT
}

func testConfig() GeneratorConfig {
	return GeneratorConfig{
		FrameSize:   testFrameSize,
		ToneFrames:  testToneFrames,
		PauseFrames: testPauseFrames,
	}
}

// generateFrames runs a fresh generator over symbols and returns every frame.
func generateFrames(t tb, cfg GeneratorConfig, symbols string) [][]int16 {
	t.Helper()
	g, err := NewGenerator(cfg)
	require.NoError(t, err)
	_, err = g.Submit(symbols)
	require.NoError(t, err)

	var frames [][]int16
	for {
		frame := make([]int16, cfg.FrameSize)
		if !g.Generate(frame) {
			break
		}
		frames = append(frames, frame)
	}
	return frames
}

// generateStream is generateFrames flattened into one slice.
func generateStream(t tb, cfg GeneratorConfig, symbols string) []int16 {
	t.Helper()
	var out []int16
	for _, f := range generateFrames(t, cfg, symbols) {
		out = append(out, f...)
	}
	return out
}

// toneBatch returns one batch cut from the steady middle of a generated tone.
func toneBatch(t tb, sym Symbol) []int16 {
	t.Helper()
	stream := generateStream(t, testConfig(), sym.String())
	return stream[150 : 150+BatchSize]
}
