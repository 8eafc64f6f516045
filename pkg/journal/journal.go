// Package journal persists one JSON record per analysis cycle for audit:
// which symbol was analyzed, whether the data was stale, what the oracle
// answered, and how the flow degraded on failure.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AnalysisRecord captures one end-to-end analysis of a symbol.
type AnalysisRecord struct {
	ID            string         `json:"id"`
	Timestamp     time.Time      `json:"timestamp"`
	Symbol        string         `json:"symbol"`
	LastRefreshed string         `json:"last_refreshed,omitempty"`
	Stale         bool           `json:"stale"`
	Summary       string         `json:"summary,omitempty"`
	Source        string         `json:"source,omitempty"`
	Verdict       map[string]any `json:"verdict,omitempty"`
	Success       bool           `json:"success"`
	ErrorMessage  string         `json:"error_message,omitempty"`
}

// Writer persists analysis records to a directory as JSON files.
type Writer struct {
	dir   string
	nowFn func() time.Time

	mu  sync.Mutex
	seq int
}

// NewWriter constructs a journal writer rooted at dir.
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "journal"
	}
	_ = os.MkdirAll(dir, 0o755)
	return &Writer{dir: dir, nowFn: time.Now}
}

// Write stores the record in a timestamped JSON file and returns its path.
func (w *Writer) Write(rec *AnalysisRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("journal: nil record")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.nowFn()
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	w.mu.Lock()
	w.seq++
	seq := w.seq
	w.mu.Unlock()

	name := fmt.Sprintf("analysis_%s_%05d.json", rec.Timestamp.UTC().Format("20060102_150405"), seq)
	path := filepath.Join(w.dir, name)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
