package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ImportRecord summarizes one imported file.
type ImportRecord struct {
	Scope    string    `json:"scope"`
	Source   string    `json:"source"`
	Entries  int       `json:"entries"`
	Stored   int       `json:"stored"`
	Rejected int       `json:"rejected"`
	At       time.Time `json:"at"`
}

// SaveImport writes rec as JSON under imports/<scope id>/ and returns the
// file path.
func (l *Layout) SaveImport(rec ImportRecord) (string, error) {
	dir := filepath.Join(l.ImportsDir, ScopeID(rec.Scope))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create import dir: %w", err)
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	name := fmt.Sprintf("%s-%s.json", rec.At.UTC().Format("20060102T150405"), sanitizeSourceName(rec.Source))
	path := filepath.Join(dir, name)

	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal import record: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write import record: %w", err)
	}
	return path, nil
}

// Imports lists the records saved for scope, oldest first.
func (l *Layout) Imports(scope string) ([]ImportRecord, error) {
	dir := filepath.Join(l.ImportsDir, ScopeID(scope))
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	out := make([]ImportRecord, 0, len(files))
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read import record: %w", err)
		}
		var rec ImportRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode import record %s: %w", f, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ScopeID is a short stable directory name for a scope.
func ScopeID(scope string) string {
	trimmed := strings.TrimSpace(strings.ToLower(scope))
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])[:12]
}

func sanitizeSourceName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "source"
	}
	return strings.ReplaceAll(base, "..", "")
}
