package connector

import (
	"net/url"

	"go.uber.org/zap"
)

// leveledLogger routes retryablehttp logging through zap, scrubbing the api key from
// any logged url.
type leveledLogger struct {
	logger *zap.SugaredLogger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, scrub(keysAndValues)...)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Infow(msg, scrub(keysAndValues)...)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, scrub(keysAndValues)...)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warnw(msg, scrub(keysAndValues)...)
}

func scrub(keysAndValues []interface{}) []interface{} {
	out := make([]interface{}, len(keysAndValues))
	for i, v := range keysAndValues {
		switch t := v.(type) {
		case string:
			out[i] = Redact(t)
		case *url.URL:
			out[i] = Redact(t.String())
		default:
			out[i] = v
		}
	}
	return out
}
