package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/brushwork/internal/models"
)

func observedGormLogger(level logger.LogLevel) (*gormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return newGormLogger(zap.New(core), level), logs
}

func TestGormLoggerSkipsRecordNotFound(t *testing.T) {
	l, logs := observedGormLogger(logger.Warn)
	sql := func() (string, int64) { return "SELECT 1", 0 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	if logs.Len() != 0 {
		t.Fatalf("record not found logged: %v", logs.All())
	}

	l.Trace(context.Background(), time.Now(), sql, errors.New("no such table: jobs"))
	entries := logs.FilterMessage("query failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one query failure, got %v", logs.All())
	}
	if entries[0].Level != zapcore.ErrorLevel || entries[0].ContextMap()["sql"] != "SELECT 1" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestGormLoggerLevels(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l, logs := observedGormLogger(logger.Warn)
	l.Trace(context.Background(), time.Now(), sql, nil)
	l.Info(context.Background(), "hello %s", "there")
	if logs.Len() != 0 {
		t.Fatalf("warn level logged %v", logs.All())
	}
	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	if logs.FilterMessage("slow query").Len() != 1 {
		t.Fatalf("slow query not logged: %v", logs.All())
	}

	verbose := l.LogMode(logger.Info)
	verbose.Trace(context.Background(), time.Now(), sql, nil)
	verbose.Info(context.Background(), "hello %s", "there")
	if logs.FilterMessage("query").Len() != 1 || logs.FilterMessage("hello there").Len() != 1 {
		t.Fatalf("info level missing entries: %v", logs.All())
	}

	silent := l.LogMode(logger.Silent)
	before := logs.Len()
	silent.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	silent.Error(context.Background(), "boom")
	if logs.Len() != before {
		t.Fatalf("silent level logged %v", logs.All()[before:])
	}
}

func TestGormLoggerWiredIntoQueries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())),
		&gorm.Config{Logger: newGormLogger(zap.New(core), logger.Warn)})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.AutoMigrate(&models.Job{}); err != nil {
		t.Fatal(err)
	}
	var job models.Job
	if err := d.Where("id = ?", "missing").First(&job).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
	if n := logs.FilterMessage("query failed").Len(); n != 0 {
		t.Fatalf("record not found logged as failure %d times", n)
	}
	_ = d.Exec("SELECT * FROM no_such_table").Error
	if logs.FilterMessage("query failed").Len() != 1 {
		t.Fatalf("failed query not logged: %v", logs.All())
	}
}
