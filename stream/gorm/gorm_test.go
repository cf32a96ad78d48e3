package gorm

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lguimbarda/min-stream/stream/core"
)

type Line struct {
	ID      uint `gorm:"primaryKey"`
	Speaker string
	Text    string
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(&Line{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dialog() *core.Stream[Line] {
	return core.Of(
		Line{Speaker: "Ishmael", Text: "Call me Ishmael."},
		Line{Speaker: "Queequeg", Text: "Me no kill."},
		Line{Speaker: "Ishmael", Text: "Some years ago."},
		Line{Speaker: "Ahab", Text: "Aye."},
		Line{Speaker: "Ishmael", Text: "Never mind how long."},
	)
}

func TestCreateAndRows(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	n, err := Create(ctx, db, dialog(), 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n != 5 {
		t.Fatalf("created %d rows, want 5", n)
	}

	rows, err := Rows[Line](ctx, db.Where("speaker = ?", "Ishmael").Order("id"))
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	texts := core.Map(rows.Stream(), func(l Line) string { return l.Text }).ToSlice()
	want := []string{"Call me Ishmael.", "Some years ago.", "Never mind how long."}
	if !reflect.DeepEqual(texts, want) {
		t.Errorf("got %v, want %v", texts, want)
	}
	if err := rows.Err(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRowsTakeReleasesConnection(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	if _, err := Create(ctx, db, dialog(), 0); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := Rows[Line](ctx, db.Order("id"))
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	first := rows.Stream().Take(1).ToSlice()
	if len(first) != 1 || first[0].Speaker != "Ishmael" {
		t.Fatalf("got %+v", first)
	}
	if !rows.Done() {
		t.Fatal("rows still open after Take was satisfied")
	}

	// With a single connection this blocks forever unless the rows were
	// closed.
	var count int64
	if err := db.WithContext(ctx).Model(&Line{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}
}

func TestRowsIntoProjection(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	if _, err := Create(ctx, db, dialog(), 10); err != nil {
		t.Fatalf("create: %v", err)
	}

	type speakerCount struct {
		Speaker string
		Lines   int
	}
	counts, errFn := Stream[speakerCount](ctx,
		db.Model(&Line{}).Select("speaker, count(*) AS lines").Group("speaker").Order("lines DESC, speaker"))
	got := counts.ToSlice()
	want := []speakerCount{{"Ishmael", 3}, {"Ahab", 1}, {"Queequeg", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if err := errFn(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStreamQueryError(t *testing.T) {
	db := openDB(t)
	s, errFn := Stream[Line](context.Background(), db.Table("missing"))
	if n := s.Count(); n != 0 {
		t.Errorf("count = %d", n)
	}
	if errFn() == nil {
		t.Error("expected a query error")
	}
}

func TestCreateInTransaction(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	dup := core.Of(Line{ID: 1, Speaker: "a"}, Line{ID: 2, Speaker: "b"}, Line{ID: 1, Speaker: "c"})
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := Create(ctx, tx, dup, 2)
		return err
	})
	if err == nil {
		t.Fatal("expected a duplicate key error")
	}

	var count int64
	db.Model(&Line{}).Count(&count)
	if count != 0 {
		t.Errorf("count = %d after rollback, want 0", count)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(zerolog.New(&buf), gormlogger.Warn, time.Millisecond)

	log.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	if !strings.Contains(buf.String(), `"message":"slow query"`) {
		t.Errorf("expected a slow query warning, got %s", buf.String())
	}

	buf.Reset()
	log.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	if buf.Len() != 0 {
		t.Errorf("fast query logged at warn level: %s", buf.String())
	}

	buf.Reset()
	log.LogMode(gormlogger.Silent).Error(context.Background(), "boom")
	if buf.Len() != 0 {
		t.Errorf("silent logger wrote %s", buf.String())
	}

	buf.Reset()
	log.Error(context.Background(), "failed %d times", 3)
	if !strings.Contains(buf.String(), "failed 3 times") {
		t.Errorf("got %s", buf.String())
	}
}
