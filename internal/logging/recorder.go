package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Diagnostic is a captured log record kept alongside an aggregation session so
// callers can inspect failures without scraping log output.
type Diagnostic struct {
	Time      time.Time         `json:"time"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Stage     string            `json:"stage,omitempty"`
	EventType string            `json:"event_type,omitempty"`
	Error     string            `json:"error,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

type recorderStore struct {
	mu      sync.Mutex
	entries []Diagnostic
	limit   int
}

// Recorder is a slog.Handler that keeps records at or above a minimum level in
// memory. Handlers derived through WithAttrs/WithGroup share the same storage.
type Recorder struct {
	store  *recorderStore
	level  slog.Level
	pre    []kv
	groups []string
}

// NewRecorder returns a recorder retaining at most limit records (0 means 256).
func NewRecorder(level slog.Level, limit int) *Recorder {
	if limit <= 0 {
		limit = 256
	}
	return &Recorder{store: &recorderStore{limit: limit}, level: level}
}

func (r *Recorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= r.level
}

func (r *Recorder) Handle(_ context.Context, record slog.Record) error {
	if record.Level < r.level {
		return nil
	}
	kvs := make([]kv, 0, record.NumAttrs()+len(r.pre))
	kvs = append(kvs, r.pre...)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, r.groups, attr)
		return true
	})

	entry := Diagnostic{
		Time:    record.Time,
		Level:   levelLabel(record.Level),
		Message: record.Message,
	}
	for _, field := range kvs {
		switch field.key {
		case FieldStage:
			entry.Stage = attrString(field.value)
		case FieldEventType:
			entry.EventType = attrString(field.value)
		case "error":
			entry.Error = attrString(field.value)
		case FieldComponent:
		default:
			if entry.Fields == nil {
				entry.Fields = make(map[string]string)
			}
			entry.Fields[field.key] = attrString(field.value)
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if len(r.store.entries) >= r.store.limit {
		r.store.entries = append(r.store.entries[:0], r.store.entries[1:]...)
	}
	r.store.entries = append(r.store.entries, entry)
	return nil
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *r
	clone.pre = append([]kv(nil), r.pre...)
	flattenAttrs(&clone.pre, r.groups, attrs)
	return &clone
}

func (r *Recorder) WithGroup(name string) slog.Handler {
	clone := *r
	clone.groups = append(append([]string(nil), r.groups...), name)
	return &clone
}

// Entries returns a copy of the captured diagnostics in arrival order.
func (r *Recorder) Entries() []Diagnostic {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]Diagnostic(nil), r.store.entries...)
}

// TeeLogger duplicates log output from base into the provided handlers.
func TeeLogger(base *slog.Logger, handlers ...slog.Handler) *slog.Logger {
	all := make([]slog.Handler, 0, len(handlers)+1)
	if base != nil {
		all = append(all, base.Handler())
	}
	for _, h := range handlers {
		if h != nil {
			all = append(all, h)
		}
	}
	switch len(all) {
	case 0:
		return NewNop()
	case 1:
		return slog.New(all[0])
	default:
		return slog.New(teeHandler(all))
	}
}

type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range t {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(teeHandler, len(t))
	for i, h := range t {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	next := make(teeHandler, len(t))
	for i, h := range t {
		next[i] = h.WithGroup(name)
	}
	return next
}
