package dtmf

import (
	"errors"
	"fmt"
	"time"

	"github.com/ColonelBlimp/dtmfcodec/internal/dsp"
)

// MaxSequence is the most symbols a single Submit queues.
const MaxSequence = 20

// Default tone timing, in milliseconds of audio.
const (
	DefaultToneDuration  = 70 * time.Millisecond
	DefaultPauseDuration = 50 * time.Millisecond
)

// oscillatorSeed is the initial y2 of both oscillators; it sets the amplitude of
// each tone to roughly 31000.
const oscillatorSeed = 31000

var (
	// ErrBusy indicates a sequence is still being generated
	ErrBusy = errors.New("generator busy")
	// ErrInvalidFrameSize indicates frame size must be positive
	ErrInvalidFrameSize = errors.New("frame size must be positive")
	// ErrInvalidDuration indicates tone and pause must last at least one frame
	ErrInvalidDuration = errors.New("tone and pause must last at least one frame")
)

// State is the phase a Generator is in.
type State int

const (
	// StateReady means the queue is empty and Submit will be accepted
	StateReady State = iota
	// StateTone means a symbol is sounding
	StateTone
	// StatePause means the silence after a symbol is being written
	StatePause
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateTone:
		return "tone"
	case StatePause:
		return "pause"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// GeneratorConfig holds the framing and timing of a generation session.
type GeneratorConfig struct {
	// FrameSize is the number of samples written per Generate call
	FrameSize int
	// ToneFrames is how many frames each symbol sounds for
	ToneFrames int
	// PauseFrames is how many silent frames follow each symbol
	PauseFrames int
}

// FramesFor converts a duration into whole frames the way the generator has
// always done it: the sample count at 8 kHz divided by the frame size, plus one.
func FramesFor(d time.Duration, frameSize int) int {
	if frameSize <= 0 {
		return 0
	}
	ms := int(d / time.Millisecond)
	return ms*(SampleRate/1000)/frameSize + 1
}

// ConfigFor builds a GeneratorConfig from millisecond timings.
func ConfigFor(frameSize int, tone, pause time.Duration) GeneratorConfig {
	return GeneratorConfig{
		FrameSize:   frameSize,
		ToneFrames:  FramesFor(tone, frameSize),
		PauseFrames: FramesFor(pause, frameSize),
	}
}

// Generator synthesises DTMF audio one frame at a time. Submit a sequence, then
// call Generate until Ready reports true again.
//
// A Generator is owned by one goroutine; it is not safe for concurrent use.
type Generator struct {
	config GeneratorConfig

	queue [MaxSequence]Symbol
	n     int // symbols queued
	index int // symbol currently sounding

	state      State
	toneLeft   int
	pauseLeft  int
	oscillator dsp.ToneOscillator
}

// NewGenerator creates an idle generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.FrameSize <= 0 {
		return nil, ErrInvalidFrameSize
	}
	if cfg.ToneFrames < 1 || cfg.PauseFrames < 1 {
		return nil, ErrInvalidDuration
	}
	return &Generator{config: cfg, state: StateReady}, nil
}

// Submit queues a new sequence. Only the first MaxSequence symbols are taken; the
// return value says how many were. An empty sequence is accepted and does nothing.
// If any symbol is invalid nothing is queued.
func (g *Generator) Submit(symbols string) (int, error) {
	if g.state != StateReady {
		return 0, ErrBusy
	}
	seq, err := ParseSymbols(symbols)
	if err != nil {
		return 0, err
	}
	if len(seq) == 0 {
		return 0, nil
	}
	if len(seq) > MaxSequence {
		seq = seq[:MaxSequence]
	}

	g.n = copy(g.queue[:], seq)
	g.startSymbol(0)
	return g.n, nil
}

// startSymbol loads the oscillators for queue[i] and enters the tone phase.
func (g *Generator) startSymbol(i int) {
	g.index = i
	g.toneLeft = g.config.ToneFrames
	g.pauseLeft = g.config.PauseFrames

	row, col, _ := g.queue[i].Position()
	g.oscillator = dsp.NewToneOscillator(rowCoefficients[row], colCoefficients[col], oscillatorSeed)
	g.state = StateTone
}

// Generate writes the next frame into out, which must hold FrameSize samples.
// It returns false, leaving out zeroed, when there is nothing to generate.
func (g *Generator) Generate(out []int16) bool {
	frame := out[:g.config.FrameSize]

	switch g.state {
	case StateTone:
		g.oscillator.Fill(frame)
		g.toneLeft--
		if g.toneLeft == 0 {
			g.state = StatePause
		}
		return true
	case StatePause:
		clear(frame)
		g.pauseLeft--
		if g.pauseLeft == 0 {
			g.advance()
		}
		return true
	default:
		clear(frame)
		return false
	}
}

func (g *Generator) advance() {
	if g.index+1 < g.n {
		g.startSymbol(g.index + 1)
		return
	}
	g.Reset()
}

// Ready reports whether a new sequence may be submitted.
func (g *Generator) Ready() bool {
	return g.state == StateReady
}

// State returns the current phase.
func (g *Generator) State() State {
	return g.state
}

// Remaining returns the number of queued symbols not yet fully written,
// including the one sounding now.
func (g *Generator) Remaining() int {
	if g.state == StateReady {
		return 0
	}
	return g.n - g.index
}

// FrameSize returns the configured frame size.
func (g *Generator) FrameSize() int {
	return g.config.FrameSize
}

// Config returns the current configuration.
func (g *Generator) Config() GeneratorConfig {
	return g.config
}

// Reset abandons the current sequence and returns to StateReady.
func (g *Generator) Reset() {
	g.n = 0
	g.index = 0
	g.toneLeft = 0
	g.pauseLeft = 0
	g.oscillator = dsp.ToneOscillator{}
	g.state = StateReady
}
