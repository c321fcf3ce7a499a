package observers

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sonoralabs/sonora/pkg/metrics"
)

// UsageSummary is the per-run accounting written next to the timeline.
type UsageSummary struct {
	TraceID       string  `json:"trace_id"`
	StepsApplied  int     `json:"steps_applied"`
	StepsSkipped  int     `json:"steps_skipped"`
	AudioSeconds  float64 `json:"audio_seconds"`
	RecordedAtUTC string  `json:"recorded_at_utc"`
}

// UsageObserver accumulates run statistics per trace and writes one
// summary file per run on Close.
type UsageObserver struct {
	dir   string
	mu    sync.Mutex
	stats map[string]*UsageSummary
}

func NewUsageObserver(dir string) *UsageObserver {
	return &UsageObserver{dir: dir, stats: make(map[string]*UsageSummary)}
}

func (o *UsageObserver) RecordEvent(ev metrics.MetricsEvent) {
	if strings.TrimSpace(o.dir) == "" || ev.Tags == nil {
		return
	}
	traceID := ev.Tags["trace_id"]
	if traceID == "" {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	stat := o.stats[traceID]
	if stat == nil {
		stat = &UsageSummary{TraceID: traceID}
		o.stats[traceID] = stat
	}
	switch ev.Name {
	case metrics.EventStepApplied:
		stat.StepsApplied++
	case metrics.EventStepSkipped:
		stat.StepsSkipped++
	case metrics.EventRunCompleted:
		if sec, ok := ev.Fields["audio_seconds"].(float64); ok {
			stat.AudioSeconds += sec
		}
	}
}

func (o *UsageObserver) Close() error {
	if strings.TrimSpace(o.dir) == "" {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return err
	}
	var errOut error
	for id, stat := range o.stats {
		stat.RecordedAtUTC = time.Now().UTC().Format(time.RFC3339)
		b, err := json.MarshalIndent(stat, "", "  ")
		if err != nil {
			errOut = errors.Join(errOut, err)
			continue
		}
		path := filepath.Join(o.dir, sanitizeID(id)+".usage.json")
		if err := os.WriteFile(path, b, 0o644); err != nil {
			errOut = errors.Join(errOut, err)
		}
	}
	return errOut
}

var _ metrics.Observer = (*UsageObserver)(nil)
