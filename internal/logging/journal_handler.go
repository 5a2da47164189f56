package logging

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// JournalHandler is a slog.Handler that sends records to the systemd journal.
type JournalHandler struct {
	identifier string
	level      slog.Level
	attrs      []slog.Attr
	groups     []string
}

// NewJournalHandler creates a journal handler tagging entries with identifier
// as SYSLOG_IDENTIFIER.
func NewJournalHandler(identifier string, level slog.Level) *JournalHandler {
	if strings.TrimSpace(identifier) == "" {
		identifier = "daemonkit"
	}
	return &JournalHandler{identifier: identifier, level: level}
}

func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	fields := map[string]string{
		"SYSLOG_IDENTIFIER": h.identifier,
	}
	for _, attr := range h.attrs {
		addAttrToFields(fields, attr, h.groups)
	}
	r.Attrs(func(attr slog.Attr) bool {
		addAttrToFields(fields, attr, h.groups)
		return true
	})
	return journal.Send(r.Message, mapLevelToPriority(r.Level), fields)
}

func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(slices.Clone(h.attrs), attrs...)
	return &next
}

func (h *JournalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(slices.Clone(h.groups), name)
	return &next
}

func mapLevelToPriority(level slog.Level) journal.Priority {
	switch {
	case level >= LevelCritical:
		return journal.PriCrit
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// addAttrToFields flattens attr into journal fields; keys are upper-cased and
// group names joined with underscores per journald convention.
func addAttrToFields(fields map[string]string, attr slog.Attr, groups []string) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := groups
		if attr.Key != "" {
			next = append(slices.Clone(groups), attr.Key)
		}
		for _, a := range attr.Value.Group() {
			addAttrToFields(fields, a, next)
		}
		return
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, "_") + "_" + key
	}
	key = strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	switch attr.Value.Kind() {
	case slog.KindInt64:
		fields[key] = strconv.FormatInt(attr.Value.Int64(), 10)
	case slog.KindBool:
		fields[key] = strconv.FormatBool(attr.Value.Bool())
	default:
		fields[key] = attrString(attr.Value)
	}
}

// IsJournalAvailable reports whether the systemd journal socket is reachable.
func IsJournalAvailable() bool {
	return journal.Enabled()
}
