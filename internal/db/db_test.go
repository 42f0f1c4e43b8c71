package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/brushwork/internal/config"
	"github.com/diewo77/brushwork/internal/models"
)

func memoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := Migrate(d, config.DatabaseConfig{Driver: "sqlite"}, false); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "app.db")}
	d, err := Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(d, cfg, true); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"general_settings", "job_invoices", "adjustments"} {
		if !d.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle"}, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSeedUserIdempotent(t *testing.T) {
	d := memoryDB(t)
	ctx := context.Background()

	u1, err := SeedUser(ctx, d, "crew@example.com", "password123")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	u2, err := SeedUser(ctx, d, "crew@example.com", "different-pass")
	if err != nil {
		t.Fatalf("seed again: %v", err)
	}
	if u1.ID != u2.ID {
		t.Fatalf("expected same user, got %d and %d", u1.ID, u2.ID)
	}
	if bcrypt.CompareHashAndPassword([]byte(u2.Password), []byte("password123")) != nil {
		t.Fatalf("expected original password kept")
	}
	var count int64
	d.Model(&models.GeneralSettings{}).Where("user_id = ?", u1.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 settings row got %d", count)
	}
}

func TestSeedUserShortPassword(t *testing.T) {
	d := memoryDB(t)
	if _, err := SeedUser(context.Background(), d, "a@example.com", "short"); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestNormalizeDSN(t *testing.T) {
	tests := map[string]string{
		"":                                         "",
		" 'postgres://u:p@h/db' ":                  "postgres://u:p@h/db",
		"host=h  user=u dbname=d":                  "host=h user=u dbname=d sslmode=disable",
		"host=h user=u dbname=d sslmode=require":   "host=h user=u dbname=d sslmode=require",
		"not a dsn":                                "not a dsn",
	}
	for in, want := range tests {
		if got := NormalizeDSN(in); got != want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToURLDSN(t *testing.T) {
	got := ToURLDSN("host=db port=5432 user=u password=p dbname=app sslmode=disable")
	if got != "postgres://u:p@db:5432/app?sslmode=disable" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := ToURLDSN("host=db"); got != "host=db" {
		t.Fatalf("expected partial DSN unchanged, got %q", got)
	}
}

func TestMaskDSN(t *testing.T) {
	if got := MaskDSN("host=db password=secret user=u"); got != "host=db password=*** user=u" {
		t.Fatalf("kv mask: %q", got)
	}
	if got := MaskDSN("postgres://u:secret@db:5432/app"); got != "postgres://u:***@db:5432/app" {
		t.Fatalf("url mask: %q", got)
	}
}

func TestMigrationURL(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "app", SSLMode: "disable"}
	if got := migrationURL(cfg); got != "postgres://u:p@db:5432/app?sslmode=disable" {
		t.Fatalf("settings url: %q", got)
	}
	cfg.RawDSN = "host=other user=x dbname=y"
	if got := migrationURL(cfg); got != "postgres://x@other/y?sslmode=disable" {
		t.Fatalf("raw dsn url: %q", got)
	}
}
