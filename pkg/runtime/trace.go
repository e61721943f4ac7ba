package runtime

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/thomasrohde/calc/pkg/ast"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart  TraceEventType = "run_start"
	TraceRunEnd    TraceEventType = "run_end"
	TraceLineStart TraceEventType = "line_start"
	TraceLineEnd   TraceEventType = "line_end"
	TraceBinding   TraceEventType = "binding"
)

// TraceEvent represents a single trace event emitted during a session.
type TraceEvent struct {
	Timestamp string         `json:"ts"`
	SessionID string         `json:"sessionId"`
	Event     TraceEventType `json:"event"`
	Line      int            `json:"line,omitempty"`
	Span      *ast.Span      `json:"span,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

func (s *Session) emit(event TraceEventType, res *Result, data map[string]any) {
	if s.trace == nil {
		return
	}
	ev := TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		SessionID: s.id,
		Event:     event,
		Data:      data,
	}
	if res != nil {
		ev.Line = res.Line
		if res.Node != nil {
			span := res.Node.NodeSpan()
			ev.Span = &span
		}
	}
	s.trace(ev)
}

// NewTraceWriter returns a trace callback that writes events to w as
// newline-delimited JSON. Write errors are dropped.
func NewTraceWriter(w io.Writer) func(TraceEvent) {
	enc := json.NewEncoder(w)
	return func(ev TraceEvent) {
		_ = enc.Encode(ev)
	}
}

// TraceSummary aggregates a trace file.
type TraceSummary struct {
	SessionID     string         `json:"sessionId"`
	TotalEvents   int            `json:"totalEvents"`
	Lines         int            `json:"lines"`
	Values        int            `json:"values"`
	StaticErrors  int            `json:"staticErrors"`
	RuntimeErrors int            `json:"runtimeErrors"`
	ErrorsByCode  map[string]int `json:"errorsByCode"`
	Bindings      int            `json:"bindings"`
	StartTime     string         `json:"startTime,omitempty"`
	EndTime       string         `json:"endTime,omitempty"`
	DurationMs    float64        `json:"durationMs"`
}

// SummarizeTrace reads newline-delimited trace events and aggregates them.
// Lines that are not valid events are skipped.
func SummarizeTrace(r io.Reader) (*TraceSummary, error) {
	summary := &TraceSummary{
		ErrorsByCode: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, MaxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event TraceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip invalid lines
		}

		summary.TotalEvents++
		if summary.SessionID == "" {
			summary.SessionID = event.SessionID
		}

		switch event.Event {
		case TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.Timestamp
			}
		case TraceRunEnd:
			summary.EndTime = event.Timestamp
		case TraceLineEnd:
			summary.Lines++
			kind, _ := event.Data["kind"].(string)
			switch kind {
			case KindValue:
				summary.Values++
			case KindStatic:
				summary.StaticErrors++
			case KindRuntime:
				summary.RuntimeErrors++
			}
			if code, ok := event.Data["code"].(string); ok {
				summary.ErrorsByCode[code]++
			}
		case TraceBinding:
			summary.Bindings++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := time.Parse(time.RFC3339Nano, summary.StartTime)
		end, err2 := time.Parse(time.RFC3339Nano, summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}

	return summary, nil
}

// WriteText prints a human-readable summary.
func (s *TraceSummary) WriteText(w io.Writer) {
	fmt.Fprintf(w, "Session: %s\n", s.SessionID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Lines: %d (%d values, %d static errors, %d runtime errors)\n",
		s.Lines, s.Values, s.StaticErrors, s.RuntimeErrors)
	for _, code := range slices.Sorted(maps.Keys(s.ErrorsByCode)) {
		fmt.Fprintf(w, "  %s: %d\n", code, s.ErrorsByCode[code])
	}
	fmt.Fprintf(w, "Bindings: %d\n", s.Bindings)
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}
