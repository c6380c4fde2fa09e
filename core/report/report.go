package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"db-corrector/core/reconcile"
	"db-corrector/core/storage"

	"github.com/minio/minio-go/v7"
)

const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Report is the outcome of one reconciliation run.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`
	Tables     []Table   `json:"tables"`
	Summary    Summary   `json:"summary"`
}

// Table is the reported outcome of one table.
type Table struct {
	Status string `json:"status"`
	reconcile.TableResult
}

// Summary provides aggregate counts over all tables.
type Summary struct {
	Tables    int `json:"tables"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// New builds a report from the results of a run.
func New(runID string, startedAt time.Time, dryRun bool, results []reconcile.TableResult) *Report {
	r := &Report{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		DryRun:     dryRun,
		Tables:     make([]Table, 0, len(results)),
	}

	for _, res := range results {
		status := StatusOK
		switch {
		case errors.Is(res.Err, reconcile.ErrSkipped):
			status = StatusSkipped
			r.Summary.Skipped++
		case res.Err != nil:
			status = StatusError
			r.Summary.Failed++
		default:
			r.Summary.Succeeded++
		}
		r.Summary.Inserted += res.Inserted
		r.Summary.Updated += res.Updated
		r.Summary.Unchanged += res.Unchanged
		r.Tables = append(r.Tables, Table{Status: status, TableResult: res})
	}
	r.Summary.Tables = len(results)

	return r
}

// MarshalJSON encodes a table with its status and the error text of the result.
func (t Table) MarshalJSON() ([]byte, error) {
	inner, err := json.Marshal(t.TableResult)
	if err != nil {
		return nil, err
	}
	status, err := json.Marshal(t.Status)
	if err != nil {
		return nil, err
	}
	// inner is a JSON object; splice the status in as its first member.
	out := make([]byte, 0, len(inner)+len(status)+12)
	out = append(out, `{"status":`...)
	out = append(out, status...)
	if len(inner) > 2 {
		out = append(out, ',')
	}
	out = append(out, inner[1:]...)
	return out, nil
}

// HasFailures reports whether any table failed or was skipped.
func (r *Report) HasFailures() bool {
	return r.Summary.Failed > 0 || r.Summary.Skipped > 0
}

// Write encodes the report as indented JSON.
func (r *Report) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// ObjectName returns the storage key of a run's report.
func ObjectName(prefix, runID string) string {
	return path.Join(prefix, runID+".json")
}

// Publish uploads the report to bucket under prefix and returns the object name.
func Publish(ctx context.Context, client storage.Client, bucket, prefix string, r *Report) (string, error) {
	var buf bytes.Buffer
	if err := r.Write(&buf); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	name := ObjectName(prefix, r.RunID)
	_, err := client.PutObject(ctx, bucket, name, &buf, int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", name, err)
	}
	return name, nil
}

// Fetch downloads the raw JSON report of a run.
func Fetch(ctx context.Context, client storage.Client, bucket, prefix, runID string) ([]byte, error) {
	reader, err := client.GetObject(ctx, bucket, ObjectName(prefix, runID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", runID, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", runID, err)
	}
	return data, nil
}

// List returns the run ids of the stored reports, newest first.
func List(ctx context.Context, client storage.Client, bucket, prefix string) ([]string, error) {
	type entry struct {
		id       string
		modified time.Time
	}
	var entries []entry

	opts := minio.ListObjectsOptions{Prefix: strings.TrimSuffix(prefix, "/") + "/", Recursive: true}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		base := path.Base(obj.Key)
		if !strings.HasSuffix(base, ".json") {
			continue
		}
		entries = append(entries, entry{id: strings.TrimSuffix(base, ".json"), modified: obj.LastModified})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modified.After(entries[j].modified)
	})
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids, nil
}
