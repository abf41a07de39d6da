package records

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/matzehuels/robdd/pkg/experiment"
)

// FileSink appends one line per record to a file.
type FileSink struct {
	mu sync.Mutex
	f  *os.File
}

// NewFileSink opens path for appending, creating it if needed.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Write(ctx context.Context, r experiment.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.WriteString(FormatLine(r) + "\n"); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

// FormatLine renders r as "vars;diagrams;unique_sizes;total;per_diagram"
// with durations in seconds.
func FormatLine(r experiment.Record) string {
	return strings.Join([]string{
		strconv.Itoa(r.Vars),
		strconv.Itoa(r.Diagrams),
		strconv.Itoa(r.UniqueSizes),
		strconv.FormatFloat(r.Total.Seconds(), 'f', -1, 64),
		strconv.FormatFloat(r.PerDiagram.Seconds(), 'f', -1, 64),
	}, ";")
}

var _ Sink = (*FileSink)(nil)
