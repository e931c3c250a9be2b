package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger routes gorm output through logrus at the matching level.
type gormLogger struct {
	log           logrus.FieldLogger
	level         logger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(log logrus.FieldLogger, level logger.LogLevel, slow time.Duration) logger.Interface {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &gormLogger{
		log:           log.WithField("component", "gorm"),
		level:         level,
		slowThreshold: slow,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Infof(msg, args...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warnf(msg, args...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Errorf(msg, args...)
	}
}

// Trace reports failed statements as errors and slow ones as warnings.
// Everything else is logged at debug when the level is Info. A missing row
// is an expected outcome and is never reported.
func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	entry := func() *logrus.Entry {
		sql, rows := fc()
		return l.log.WithFields(logrus.Fields{
			"sql":     sql,
			"rows":    rows,
			"elapsed": elapsed,
		})
	}

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		entry().WithError(err).Error("query failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		entry().WithField("threshold", l.slowThreshold).Warn("slow query")
	case l.level >= logger.Info:
		entry().Debug("query")
	}
}
