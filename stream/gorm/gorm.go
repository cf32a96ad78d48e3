// Package gorm provides stream adapters over GORM queries. A query result is
// streamed row by row through the sql package's cursor, and streams are
// persisted in bounded batches.
package gorm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lguimbarda/min-stream/stream/aggregate"
	"github.com/lguimbarda/min-stream/stream/core"
	sqlstream "github.com/lguimbarda/min-stream/stream/sql"
)

// DefaultBatchSize is the number of records per INSERT in Create.
const DefaultBatchSize = 100

// Rows runs query and returns a cursor scanning each row into a T. Without
// a Model or Table on query, the model is T.
func Rows[T any](ctx context.Context, query *gorm.DB) (*sqlstream.Rows[T], error) {
	db := query.WithContext(ctx)
	if db.Statement.Model == nil && db.Statement.Table == "" {
		db = db.Model(new(T))
	}
	rows, err := db.Rows()
	if err != nil {
		return nil, fmt.Errorf("gorm: query: %w", err)
	}
	return sqlstream.NewRows(rows, func(r *sql.Rows) (T, error) {
		var v T
		err := db.ScanRows(r, &v)
		return v, err
	}), nil
}

// Stream runs query and returns its rows as a Stream. The returned function
// reports the error that ended the rows, if any.
func Stream[T any](ctx context.Context, query *gorm.DB) (*core.Stream[T], func() error) {
	rows, err := Rows[T](ctx, query)
	if err != nil {
		return core.Empty[T](), func() error { return err }
	}
	return rows.Stream(), rows.Err
}

// Create drains s into db, batchSize records per INSERT, and returns the
// number of rows created. A batchSize below one means DefaultBatchSize.
// Batches already inserted stay inserted when a later one fails; run Create
// inside db.Transaction for all-or-nothing.
func Create[T any](ctx context.Context, db *gorm.DB, s *core.Stream[T], batchSize int) (int64, error) {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	db = db.WithContext(ctx)
	var n int64
	for batch := range aggregate.Batch(s, batchSize).All() {
		res := db.Create(&batch)
		if res.Error != nil {
			return n, fmt.Errorf("gorm: create: %w", res.Error)
		}
		n += res.RowsAffected
	}
	return n, nil
}

// Logger adapts a zerolog.Logger to GORM's logger interface. Statements are
// logged at debug level, slow statements as warnings and failures as
// errors.
type Logger struct {
	log           zerolog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewLogger creates a GORM logger writing to log.
func NewLogger(log zerolog.Logger, level gormlogger.LogLevel, slowThreshold time.Duration) *Logger {
	return &Logger{
		log:           log.With().Str("component", "gorm").Logger(),
		level:         level,
		slowThreshold: slowThreshold,
	}
}

func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &Logger{log: l.log, level: level, slowThreshold: l.slowThreshold}
}

func (l *Logger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.log.Info().Msgf(msg, data...)
	}
}

func (l *Logger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Warn().Msgf(msg, data...)
	}
}

func (l *Logger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.log.Error().Msgf(msg, data...)
	}
}

func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	stmt, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		l.log.Error().Err(err).Str("sql", stmt).Dur("duration", elapsed).Int64("rows", rows).Msg("query failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		l.log.Warn().Str("sql", stmt).Dur("duration", elapsed).Int64("rows", rows).Msg("slow query")
	case l.level >= gormlogger.Info:
		l.log.Debug().Str("sql", stmt).Dur("duration", elapsed).Int64("rows", rows).Msg("query")
	}
}

var _ gormlogger.Interface = (*Logger)(nil)
