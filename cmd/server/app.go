package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/brushwork/auth"
	"github.com/diewo77/brushwork/internal/blob"
	"github.com/diewo77/brushwork/internal/config"
	"github.com/diewo77/brushwork/internal/db"
	"github.com/diewo77/brushwork/internal/mail"
	"github.com/diewo77/brushwork/internal/redislock"
	"github.com/diewo77/brushwork/internal/services"
	"github.com/diewo77/brushwork/internal/store"
)

// app holds the wired collaborators shared by the subcommands.
type app struct {
	db        *gorm.DB
	store     *store.Store
	lifecycle *services.LifecycleService
	payroll   *services.PayrollService
	closers   []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	conn, err := db.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if cfg.App.Dev || cfg.App.Migrations {
		if err := db.Migrate(conn, cfg.Database, cfg.App.Migrations); err != nil {
			return nil, err
		}
		log.Info("migrations applied", zap.Bool("sql", cfg.App.Migrations))
	}
	auth.SetSecret(cfg.Session.Secret)

	a := &app{db: conn, store: store.New(conn)}
	if sqlDB, err := conn.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	opts := []services.PayrollOption{services.WithMailer(mail.New(cfg.SMTP, log))}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, payroll generation runs unlocked", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = rdb.Close()
		} else {
			a.closers = append(a.closers, rdb.Close)
			ttl := time.Duration(cfg.Redis.LockTTL) * time.Second
			opts = append(opts, services.WithLocker(redislock.New(rdb, "", ttl)))
		}
	}
	archive, err := openArchive(ctx, cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}
	if archive != nil {
		opts = append(opts, services.WithArchive(archive))
	}

	a.lifecycle = services.NewLifecycleService(a.store, log)
	a.payroll = services.NewPayrollService(a.store, log, opts...)
	return a, nil
}

// openArchive returns nil when archiving is disabled.
func openArchive(ctx context.Context, sc config.StorageConfig) (blob.Store, error) {
	switch sc.Backend {
	case "none", "":
		return nil, nil
	case "local":
		return blob.LocalFS{Root: sc.LocalDir}, nil
	case "s3":
		s, err := blob.NewS3(ctx, blob.S3Config{
			Bucket:          sc.Bucket,
			Prefix:          sc.Prefix,
			Region:          sc.Region,
			Endpoint:        sc.Endpoint,
			AccessKeyID:     sc.AccessKeyID,
			SecretAccessKey: sc.SecretAccessKey,
			UsePathStyle:    sc.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", sc.Backend)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}
