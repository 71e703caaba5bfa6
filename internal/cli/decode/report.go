package decode

import (
	"fmt"
	"io"
	"time"

	"github.com/lestrrat-go/strftime"
	"gopkg.in/yaml.v3"
)

// Event is one detected tone onset.
type Event struct {
	Symbol string        `yaml:"symbol"`
	Batch  uint64        `yaml:"batch"`
	Offset time.Duration `yaml:"offset"`
	Time   time.Time     `yaml:"-"`
	Stamp  string        `yaml:"time"`
}

// Report summarises a decoding session.
type Report struct {
	Source   string  `yaml:"source"`
	Format   string  `yaml:"format,omitempty"`
	Samples  int     `yaml:"samples"`
	Batches  uint64  `yaml:"batches"`
	Duration float64 `yaml:"duration_seconds"`
	Symbols  string  `yaml:"symbols"`
	Events   []Event `yaml:"events"`
}

// WriteYAML emits the report as a YAML document.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// WriteText prints one line per event followed by the decoded string.
func (r *Report) WriteText(w io.Writer) error {
	for _, ev := range r.Events {
		if err := WriteEvent(w, ev); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s: %q\n", r.Source, r.Symbols)
	return err
}

// WriteEvent prints a single event line.
func WriteEvent(w io.Writer, ev Event) error {
	_, err := fmt.Fprintf(w, "[%s] %s  batch %d  +%.3fs\n", ev.Stamp, ev.Symbol, ev.Batch, ev.Offset.Seconds())
	return err
}

// stamper formats event times with a strftime pattern.
type stamper struct {
	f *strftime.Strftime
}

func newStamper(pattern string) (*stamper, error) {
	f, err := strftime.New(pattern, strftime.WithMilliseconds('L'))
	if err != nil {
		return nil, fmt.Errorf("timestamp format %q: %w", pattern, err)
	}
	return &stamper{f: f}, nil
}

func (s *stamper) stamp(t time.Time) string {
	return s.f.FormatString(t)
}
