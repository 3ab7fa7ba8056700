// maintenance.go implements the operator-facing storage utilities: the
// usage report, bulk clear, backup/restore, and the integrity check that
// finds (and optionally removes) keys whose JSON no longer decodes.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// BackupVersion is the format version stamped into backup documents.
// Restore rejects documents carrying a different version.
const BackupVersion = "1.0"

// UsageInfo approximates how much of the underlying store is in use.
// The byte figure sums key and value lengths across the ENTIRE keyspace,
// not just Printwise-prefixed keys -- the store is shared, and quota
// pressure comes from everything in it.
type UsageInfo struct {
	Keys  int     `json:"keys"`
	Bytes int64   `json:"bytes"`
	KB    float64 `json:"kb"`
	MB    float64 `json:"mb"`
}

// BackupDocument is a portable snapshot of every Printwise-prefixed
// key/value pair. Keys are stored without the prefix so a restore into a
// store with a different prefix still round-trips.
type BackupDocument struct {
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Data      map[string]string `json:"data"`
}

// RestoreReport counts the outcome of a restore. OK is true only when
// every pair was written back.
type RestoreReport struct {
	Restored int  `json:"restored"`
	Failed   int  `json:"failed"`
	OK       bool `json:"ok"`
}

// IntegrityIssue identifies a stored value that should be JSON but no
// longer decodes, along with the decode error.
type IntegrityIssue struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// IntegrityReport lists which structured keys decode cleanly and which
// are corrupted.
type IntegrityReport struct {
	Valid   []string         `json:"valid"`
	Invalid []IntegrityIssue `json:"invalid"`
}

// UsageInfo sums key+value lengths across the whole store to approximate
// bytes used, and derives kilobyte/megabyte figures from it.
func (s *Store) UsageInfo(ctx context.Context) (*UsageInfo, error) {
	keys, err := s.scan(ctx, "*")
	if err != nil {
		return nil, err
	}

	info := &UsageInfo{Keys: len(keys)}
	for _, k := range keys {
		val, err := s.rdb.Get(ctx, k).Result()
		if err != nil {
			// Non-string types (or keys expired mid-scan) don't stop the
			// report; they just aren't counted.
			continue
		}
		info.Bytes += int64(len(k) + len(val))
	}

	info.KB = float64(info.Bytes) / 1024
	info.MB = info.KB / 1024
	return info, nil
}

// Clear removes every key under the application prefix and returns how
// many were deleted.
func (s *Store) Clear(ctx context.Context) (int, error) {
	keys, err := s.scan(ctx, s.prefix+"*")
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := s.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("clearing prefixed keys: %w", err)
	}
	return int(removed), nil
}

// Backup snapshots every prefixed key/value pair into a single document
// stamped with the format version and the current time.
func (s *Store) Backup(ctx context.Context) (*BackupDocument, error) {
	names, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}

	doc := &BackupDocument{
		Version:   BackupVersion,
		Timestamp: time.Now().UTC(),
		Data:      make(map[string]string, len(names)),
	}
	for _, name := range names {
		val, ok, err := s.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			doc.Data[name] = val
		}
	}
	return doc, nil
}

// Restore writes every pair from a backup document back into the store.
// Individual write failures are counted rather than aborting the run, so a
// partially-writable store recovers as much as it can. The report's OK
// flag is set only when nothing failed.
func (s *Store) Restore(ctx context.Context, doc *BackupDocument) (*RestoreReport, error) {
	if doc == nil || doc.Data == nil {
		return nil, fmt.Errorf("restore: empty backup document")
	}
	if doc.Version != BackupVersion {
		return nil, fmt.Errorf("restore: unsupported backup version %q", doc.Version)
	}

	report := &RestoreReport{}
	for name, val := range doc.Data {
		if err := s.Set(ctx, name, val); err != nil {
			slog.Warn("restore: failed to write key",
				slog.String("key", name),
				slog.Any("error", err),
			)
			report.Failed++
			continue
		}
		report.Restored++
	}
	report.OK = report.Failed == 0
	return report, nil
}

// IntegrityCheck decodes every prefixed value that looks like a JSON
// document (first non-space byte is '{' or '['). Plain string values are
// legal and are not examined.
func (s *Store) IntegrityCheck(ctx context.Context) (*IntegrityReport, error) {
	names, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}

	report := &IntegrityReport{}
	for _, name := range names {
		val, ok, err := s.Get(ctx, name)
		if err != nil || !ok {
			continue
		}
		if !looksStructured(val) {
			continue
		}

		var decoded any
		if err := json.Unmarshal([]byte(val), &decoded); err != nil {
			report.Invalid = append(report.Invalid, IntegrityIssue{
				Key:   name,
				Error: err.Error(),
			})
			continue
		}
		report.Valid = append(report.Valid, name)
	}
	return report, nil
}

// Cleanup removes every key the integrity check flagged as corrupted and
// returns the number removed.
func (s *Store) Cleanup(ctx context.Context) (int, error) {
	report, err := s.IntegrityCheck(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, issue := range report.Invalid {
		if err := s.Delete(ctx, issue.Key); err != nil {
			slog.Warn("cleanup: failed to delete corrupted key",
				slog.String("key", issue.Key),
				slog.Any("error", err),
			)
			continue
		}
		slog.Info("cleanup: removed corrupted key", slog.String("key", issue.Key))
		removed++
	}
	return removed, nil
}

// looksStructured reports whether a stored value claims to be a JSON
// object or array.
func looksStructured(val string) bool {
	trimmed := strings.TrimLeft(val, " \t\r\n")
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
