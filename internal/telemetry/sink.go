// Package telemetry records per-request statistics of calls made to cluster services.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RequestsStatsName is the stats stream for calls to cluster proxies.
const RequestsStatsName = "ytRequests"

// Record is one stats entry describing a proxied request.
type Record struct {
	ResponseStatus      int       `json:"responseStatus" yaml:"response_status"`
	HeaderContentLength int64     `json:"headerContentLength" yaml:"header_content_length"`
	Timestamp           time.Time `json:"timestamp" yaml:"timestamp"`
	Host                string    `json:"host" yaml:"host"`
	Service             string    `json:"service" yaml:"service"`
	RequestTime         int64     `json:"requestTime" yaml:"request_time"` // milliseconds
	RequestID           string    `json:"requestId" yaml:"request_id"`
	Action              string    `json:"action" yaml:"action"`
	Referer             string    `json:"referer" yaml:"referer"`
	Page                string    `json:"page" yaml:"page"`
}

// Sink receives stats records.
type Sink interface {
	RecordStats(ctx context.Context, name string, rec Record) error
}

// LogSink writes stats records to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

// RecordStats implements Sink.
func (s LogSink) RecordStats(ctx context.Context, name string, rec Record) error {
	if s.Logger == nil {
		return nil
	}
	s.Logger.LogAttrs(ctx, slog.LevelDebug, "stats",
		slog.String("name", name),
		slog.Int("responseStatus", rec.ResponseStatus),
		slog.Int64("headerContentLength", rec.HeaderContentLength),
		slog.Time("timestamp", rec.Timestamp),
		slog.String("host", rec.Host),
		slog.String("service", rec.Service),
		slog.Int64("requestTime", rec.RequestTime),
		slog.String("requestId", rec.RequestID),
		slog.String("action", rec.Action),
		slog.String("referer", rec.Referer),
		slog.String("page", rec.Page),
	)
	return nil
}

// Multi fans a record out to several sinks. Every sink is called; errors are joined.
type Multi []Sink

// RecordStats implements Sink.
func (m Multi) RecordStats(ctx context.Context, name string, rec Record) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.RecordStats(ctx, name, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every record.
type Discard struct{}

// RecordStats implements Sink.
func (Discard) RecordStats(context.Context, string, Record) error { return nil }
