// Package spool provides a file-backed event spool: a sink that writes
// events to disk so they can be replayed into a real backend later.
//
// The spool is the offline story for environments where Redis or
// MongoDB is not reachable at call time (CI machines, laptops). Each
// event is stored as one JSON file; entries expire by file modification
// time and are pruned on read.
//
// Multiple processes can safely share a spool directory: entries are
// written whole with unique names and never modified afterwards.
package spool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/traceloom/traceloom/pkg/errors"
	"github.com/traceloom/traceloom/pkg/event"
	"github.com/traceloom/traceloom/pkg/sink"
)

// Event kinds stored in spool entries.
const (
	KindSpan       = "span"
	KindBreadcrumb = "breadcrumb"
	KindError      = "error"
)

// Spool stores events as JSON files in a directory, with a TTL based
// on file modification time. A TTL of 0 means entries never expire.
type Spool struct {
	dir string
	ttl time.Duration
}

// New creates a Spool in dir, creating the directory if needed.
// If dir is empty, ~/.cache/traceloom/spool is used.
func New(dir string, ttl time.Duration) (*Spool, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "traceloom", "spool")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Spool{dir: dir, ttl: ttl}, nil
}

// Dir returns the spool directory.
func (s *Spool) Dir() string { return s.dir }

// Entry is one spooled event.
type Entry struct {
	Kind string          `json:"kind"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`

	file string // base name of the backing file, set by List
}

// EmitSpan spools the span.
func (s *Spool) EmitSpan(_ context.Context, sp event.Span) error {
	return s.write(KindSpan, sp)
}

// EmitBreadcrumb spools the breadcrumb.
func (s *Spool) EmitBreadcrumb(_ context.Context, b event.Breadcrumb) error {
	return s.write(KindBreadcrumb, b)
}

// EmitError spools the error event.
func (s *Spool) EmitError(_ context.Context, e event.ErrorEvent) error {
	return s.write(KindError, e)
}

// Close does nothing; every write is already durable.
func (s *Spool) Close() error { return nil }

func (s *Spool) write(kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s event", kind)
	}
	entry := Entry{Kind: kind, Time: time.Now().UTC(), Data: data}
	payload, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode spool entry")
	}
	// Timestamp prefix keeps directory listings in emission order;
	// the UUID suffix makes concurrent writers collision-free.
	name := fmt.Sprintf("%s-%s.json", entry.Time.Format("20060102T150405.000000000"), uuid.NewString())
	return os.WriteFile(filepath.Join(s.dir, name), payload, 0o644)
}

// List returns the spooled entries in emission order, pruning expired
// and unreadable files as it goes. A corrupt entry is removed and
// skipped, not returned as an error: the spool must never wedge on one
// bad file.
func (s *Spool) List() ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".json") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	var out []Entry
	for _, name := range names {
		path := filepath.Join(s.dir, name)

		if s.ttl > 0 {
			if info, err := os.Stat(path); err == nil && time.Since(info.ModTime()) > s.ttl {
				_ = os.Remove(path)
				continue
			}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			_ = os.Remove(path)
			continue
		}
		entry.file = name
		out = append(out, entry)
	}
	return out, nil
}

// Replay re-emits every spooled entry into dst. It returns the number
// of events replayed. Each entry's file is removed as soon as that
// entry is delivered, so a failed replay stops with the delivered
// entries gone and only the remaining ones spooled; retrying resumes
// where the last attempt stopped without duplicating events.
func (s *Spool) Replay(ctx context.Context, dst sink.Sink) (int, error) {
	entries, err := s.List()
	if err != nil {
		return 0, err
	}

	for i, entry := range entries {
		if err := replayOne(ctx, dst, entry); err != nil {
			return i, errors.Wrap(errors.ErrCodeSinkUnavailable, err, "replay stalled after %d events", i)
		}
		_ = os.Remove(filepath.Join(s.dir, entry.file))
	}
	return len(entries), nil
}

func replayOne(ctx context.Context, dst sink.Sink, entry Entry) error {
	switch entry.Kind {
	case KindSpan:
		var sp event.Span
		if err := json.Unmarshal(entry.Data, &sp); err != nil {
			return errors.Wrap(errors.ErrCodeSpoolCorrupt, err, "decode spooled span")
		}
		return dst.EmitSpan(ctx, sp)
	case KindBreadcrumb:
		var b event.Breadcrumb
		if err := json.Unmarshal(entry.Data, &b); err != nil {
			return errors.Wrap(errors.ErrCodeSpoolCorrupt, err, "decode spooled breadcrumb")
		}
		return dst.EmitBreadcrumb(ctx, b)
	case KindError:
		var e event.ErrorEvent
		if err := json.Unmarshal(entry.Data, &e); err != nil {
			return errors.Wrap(errors.ErrCodeSpoolCorrupt, err, "decode spooled error event")
		}
		return dst.EmitError(ctx, e)
	default:
		return errors.New(errors.ErrCodeSpoolCorrupt, "unknown spool entry kind %q", entry.Kind)
	}
}

// Clear removes all spooled entries.
func (s *Spool) Clear() error {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".json") {
			if err := os.Remove(filepath.Join(s.dir, f.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// Ensure Spool implements sink.Sink.
var _ sink.Sink = (*Spool)(nil)
