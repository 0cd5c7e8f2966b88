// Package obalog adapts github.com/rs/zerolog to the tiny ber.TraceSink /
// ldapmsg sink interface the wire codecs depend on, so that core packages
// never import a concrete logging library themselves.
//
// A decode can get its own correlation ID, generated with
// github.com/google/uuid rather than hand-rolled — see WithDecodeID.
package obalog

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oba-ldap/ldapwire/ber"
)

// Level controls the minimum severity a Sink forwards to zerolog.
type Level int

const (
	// LevelDebug is the most verbose level.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// ParseLevel parses a string into a Level, defaulting to LevelInfo for
// anything unrecognized.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Config selects the level and destination for NewConsoleSink and
// NewJSONSink (the constructor chosen fixes the format), mirroring the shape the teacher's own logging.Config used
// for level/format/output selection.
type Config struct {
	Level  string
	Output io.Writer
}

// Sink adapts a zerolog.Logger to ber.TraceSink. A Sink from a constructor
// carries no correlation ID; WithDecodeID lets a caller mint one per
// Container.Decode call so every event from a single PDU's worth of TLVs
// groups under the same ID in the log stream.
type Sink struct {
	logger    zerolog.Logger
	decodeID  string
	threshold zerolog.Level
}

var _ ber.TraceSink = (*Sink)(nil)

// NewNopSink returns a Sink equivalent to ber.NopSink — useful when a
// caller wants the Sink type (e.g. for WithDecodeID chaining) without
// actually emitting anything.
func NewNopSink() *Sink {
	return &Sink{logger: zerolog.Nop()}
}

// NewJSONSink builds a Sink that writes newline-delimited JSON, the
// machine-parseable format the teacher's logging package called
// FormatJSON.
func NewJSONSink(cfg Config) *Sink {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	level := ParseLevel(cfg.Level)
	logger := zerolog.New(out).Level(level.zerolog()).With().Timestamp().Logger()
	return &Sink{logger: logger, threshold: level.zerolog()}
}

// NewConsoleSink builds a Sink using zerolog's human-readable console
// writer — the variant cmd/ldapwiredump installs for interactive use.
func NewConsoleSink(cfg Config) *Sink {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	level := ParseLevel(cfg.Level)
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	logger := zerolog.New(writer).Level(level.zerolog()).With().Timestamp().Logger()
	return &Sink{logger: logger, threshold: level.zerolog()}
}

// WithDecodeID returns a copy of the Sink carrying a fresh UUID
// correlation ID, for one Container.Decode call's worth of events. This is
// the structured-logging analogue of the teacher's hand-rolled
// GenerateRequestID counter, using the ecosystem UUID generator instead.
func (s *Sink) WithDecodeID() *Sink {
	return &Sink{
		logger:    s.logger,
		decodeID:  uuid.NewString(),
		threshold: s.threshold,
	}
}

// WithFields returns a copy of the Sink with the given key-value pairs
// attached to its zerolog context, for persistent per-connection fields
// (remote address, bound DN, and so on).
func (s *Sink) WithFields(fields map[string]any) *Sink {
	ctx := s.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Sink{logger: ctx.Logger(), decodeID: s.decodeID, threshold: s.threshold}
}

// Event implements ber.TraceSink.
func (s *Sink) Event(level string, msg string, fields map[string]any) {
	var ev *zerolog.Event
	switch level {
	case "debug":
		ev = s.logger.Debug()
	case "warn":
		ev = s.logger.Warn()
	case "error":
		ev = s.logger.Error()
	default:
		ev = s.logger.Info()
	}
	if s.decodeID != "" {
		ev = ev.Str("decode_id", s.decodeID)
	}
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
