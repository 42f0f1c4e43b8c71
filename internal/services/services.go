// Package services orchestrates the store, the lifecycle planner and the
// financial calculator behind the HTTP handlers and the CLI.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/diewo77/brushwork/internal/obs"
)

var (
	ErrNoJobsSelected         = errors.New("no jobs selected")
	ErrReportAlreadyGenerated = errors.New("payroll report already generated for this week")
	ErrGenerationInProgress   = errors.New("payroll report generation in progress")
)

// Locker serializes work across processes. unlock is only non-nil when ok.
type Locker interface {
	TryLock(ctx context.Context, name string) (unlock func(), ok bool, err error)
}

var tracer = obs.Tracer("services")

func startSpan(ctx context.Context, name string, userID uint, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.Int64("user.id", int64(userID)))
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func defaultClock() time.Time { return time.Now() }
