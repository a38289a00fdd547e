package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// Log writes messages to a logger instead of sending them.
type Log struct {
	log zerolog.Logger
	// ShowVars includes template variables, codes and links included, in
	// the log line. Development only.
	ShowVars bool
}

func NewLog(log zerolog.Logger, showVars bool) *Log {
	return &Log{log: log, ShowVars: showVars}
}

func (l *Log) Send(_ context.Context, to, templateID string, vars map[string]string) error {
	if _, _, err := Render(templateID, vars); err != nil {
		return err
	}

	ev := l.log.Info().Str("to", to).Str("template", templateID)
	if l.ShowVars {
		ev = ev.Fields(map[string]any{"vars": vars})
	}
	ev.Msg("email suppressed")
	return nil
}
