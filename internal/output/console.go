package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"bakematrix/internal/checks"
)

type ConsoleSink struct {
	writer          io.Writer
	format          string // "text", "json", "ndjson"
	colorize        bool
	mu              sync.Mutex
	results         []checks.Result // For JSON array output
	allowedStatuses map[string]bool
	counts          map[checks.Status]int
}

// NewConsoleSink writes to w, or to stdout with status colors when w is nil.
func NewConsoleSink(w io.Writer, format string, filterStatuses []string) *ConsoleSink {
	colorize := false
	if w == nil {
		w = os.Stdout
		colorize = !color.NoColor
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer:   w,
		format:   format,
		colorize: colorize,
		counts:   make(map[checks.Status]int),
	}

	if len(filterStatuses) > 0 {
		s.allowedStatuses = make(map[string]bool)
		for _, st := range filterStatuses {
			s.allowedStatuses[strings.ToUpper(strings.TrimSpace(st))] = true
		}
	}

	return s
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	if r, ok := v.(checks.Result); ok {
		s.counts[r.Status]++
		if len(s.allowedStatuses) > 0 && !s.allowedStatuses[string(r.Status)] {
			return nil
		}
	}

	switch s.format {
	case "json":
		r, ok := v.(checks.Result)
		if !ok {
			// Ignore non-result events in JSON console mode.
			return nil
		}
		s.results = append(s.results, r)
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flush(s.writer)
		case checks.Result:
			if err := encoder.Encode(eventFromResult(t)); err != nil {
				return err
			}
			return flush(s.writer)
		default:
			return nil
		}
	case "text":
		switch t := v.(type) {
		case checks.Result:
			return s.writeResultText(t)
		case Event:
			if t.Type != EventRunFinished {
				return nil
			}
			return s.writeSummaryText()
		default:
			return nil
		}
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) status(st checks.Status) string {
	label := "[" + string(st) + "]"
	if !s.colorize {
		return label
	}
	switch st {
	case checks.StatusPass:
		return color.GreenString(label)
	case checks.StatusFail:
		return color.RedString(label)
	case checks.StatusError:
		return color.New(color.FgYellow, color.Bold).Sprint(label)
	default:
		return label
	}
}

func (s *ConsoleSink) writeResultText(r checks.Result) error {
	line := fmt.Sprintf("%s %s: %s", s.status(r.Status), r.CheckID, r.Config)
	if r.Message != "" {
		line += " - " + r.Message
	}
	if _, err := fmt.Fprintln(s.writer, line); err != nil {
		return err
	}
	return flush(s.writer)
}

func (s *ConsoleSink) writeSummaryText() error {
	_, err := fmt.Fprintf(s.writer, "\n%d passed, %d failed, %d errored\n",
		s.counts[checks.StatusPass], s.counts[checks.StatusFail], s.counts[checks.StatusError])
	if err != nil {
		return err
	}
	return flush(s.writer)
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		results := s.results
		if results == nil {
			results = []checks.Result{}
		}
		if err := encoder.Encode(results); err != nil {
			return err
		}
		return flush(s.writer)
	}
	return nil
}
