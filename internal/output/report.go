package output

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/renameio/v2"

	"bakematrix/internal/checks"
)

// ReportSink renders a Markdown summary of the run, one row per
// configuration, written atomically on Close.
type ReportSink struct {
	path         string
	mu           sync.Mutex
	configs      map[string]*configStats
	runID        string
	level        string
	exitCode     int
	haveExitCode bool
}

type configStats struct {
	Config   string
	Pass     int
	Fail     int
	Error    int
	Problems []string
}

func (c *configStats) status() checks.Status {
	switch {
	case c.Error > 0:
		return checks.StatusError
	case c.Fail > 0:
		return checks.StatusFail
	default:
		return checks.StatusPass
	}
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}
	return &ReportSink{path: path, configs: make(map[string]*configStats)}, nil
}

func (s *ReportSink) stats(config string) *configStats {
	cs, ok := s.configs[config]
	if !ok {
		cs = &configStats{Config: config}
		s.configs[config] = cs
	}
	return cs
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case checks.Result:
		cs := s.stats(t.Config)
		switch t.Status {
		case checks.StatusPass:
			cs.Pass++
		case checks.StatusFail:
			cs.Fail++
		case checks.StatusError:
			cs.Error++
		}
		if t.Status != checks.StatusPass {
			cs.Problems = append(cs.Problems, fmt.Sprintf("%s (%s): %s", t.CheckID, t.Kind, t.Message))
		}
	case Event:
		switch t.Type {
		case EventRunStarted:
			s.runID = t.RunID
			s.level = t.Level
		case EventConfigStarted:
			s.stats(t.Config)
		case EventRunFinished:
			s.exitCode = t.ExitCode
			s.haveExitCode = true
		}
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.configs))
	for name := range s.configs {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("# Template matrix report\n\n")
	if s.runID != "" {
		fmt.Fprintf(&b, "- Run: `%s`\n", s.runID)
	}
	if s.level != "" {
		fmt.Fprintf(&b, "- Level: %s\n", s.level)
	}
	fmt.Fprintf(&b, "- Configurations: %d\n", len(names))
	if s.haveExitCode {
		fmt.Fprintf(&b, "- Exit code: %d\n", s.exitCode)
	}
	b.WriteString("\n| Configuration | Status | Passed | Failed | Errored |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, name := range names {
		cs := s.configs[name]
		fmt.Fprintf(&b, "| `%s` | %s | %d | %d | %d |\n", cs.Config, cs.status(), cs.Pass, cs.Fail, cs.Error)
	}

	var withProblems []string
	for _, name := range names {
		if len(s.configs[name].Problems) > 0 {
			withProblems = append(withProblems, name)
		}
	}
	if len(withProblems) > 0 {
		b.WriteString("\n## Problems\n")
		for _, name := range withProblems {
			fmt.Fprintf(&b, "\n### `%s`\n\n", name)
			for _, p := range s.configs[name].Problems {
				fmt.Fprintf(&b, "- %s\n", escapeMarkdownLine(p))
			}
		}
	}

	if err := renameio.WriteFile(s.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

func escapeMarkdownLine(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}
