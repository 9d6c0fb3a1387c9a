package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/qcteam/teamcal/internal/domain"
)

const logCategory = "sql"

// gormLogger routes GORM's logging into the application log.
type gormLogger struct {
	log   domain.Logger
	level logger.LogLevel
}

func newGormLogger(log domain.Logger) logger.Interface {
	if log == nil {
		log = domain.NopLogger{}
	}
	return &gormLogger{log: log, level: logger.Warn}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	c := *l
	c.level = level
	return &c
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= logger.Info {
		l.log.Info("", logCategory, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= logger.Warn {
		l.log.Warn("", logCategory, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= logger.Error {
		l.log.Error("", logCategory, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		l.log.Error("", logCategory, fmt.Sprintf("%s [%s rows=%d]: %v", sql, elapsed, rows, err))
	case l.level >= logger.Info:
		sql, rows := fc()
		l.log.Debug("", logCategory, fmt.Sprintf("%s [%s rows=%d]", sql, elapsed, rows))
	}
}
