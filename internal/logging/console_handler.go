package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// consoleOutput is shared by every handler derived from one logger so lines
// from different components never interleave.
type consoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// consoleHandler writes one line per record:
//
//	<ts> <LEVEL> <component>[/<stage>]: <message> [file:line] key=value ...
//
// The component and stage attributes are lifted into the prefix; everything
// else follows as key=value pairs.
type consoleHandler struct {
	out       *consoleOutput
	level     slog.Leveler
	addSource bool
	pre       []kv
	groups    []string
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{out: &consoleOutput{w: w}, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]kv, 0, len(h.pre)+record.NumAttrs())
	fields = append(fields, h.pre...)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&fields, h.groups, attr)
		return true
	})

	var component, stage string
	rest := fields[:0]
	for _, f := range fields {
		switch {
		case f.key == FieldComponent && component == "":
			component = attrString(f.value)
		case f.key == FieldStage && stage == "":
			stage = attrString(f.value)
		case f.key == FieldComponent, f.key == FieldStage:
		default:
			rest = append(rest, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	line := make([]byte, 0, 96+len(rest)*24)
	line = ts.UTC().AppendFormat(line, consoleTimeLayout)
	line = append(line, ' ')
	line = append(line, levelLabel(record.Level)...)
	line = append(line, ' ')
	if prefix := joinPrefix(component, stage); prefix != "" {
		line = append(line, prefix...)
		line = append(line, ": "...)
	}
	if record.Message == "" {
		line = append(line, "(no message)"...)
	} else {
		line = append(line, record.Message...)
	}
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			line = append(line, " ["...)
			line = append(line, filepath.Base(src.File)...)
			line = append(line, ':')
			line = strconv.AppendInt(line, int64(src.Line), 10)
			line = append(line, ']')
		}
	}
	for _, f := range rest {
		if f.key == "" {
			continue
		}
		line = append(line, ' ')
		line = append(line, f.key...)
		line = append(line, '=')
		line = append(line, quoteValue(f.value)...)
	}
	line = append(line, '\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := h.out.w.Write(line)
	return err
}

func joinPrefix(component, stage string) string {
	switch {
	case component == "":
		return stage
	case stage == "":
		return component
	default:
		return component + "/" + stage
	}
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.pre = append([]kv(nil), h.pre...)
	flattenAttrs(&next.pre, h.groups, attrs)
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}
