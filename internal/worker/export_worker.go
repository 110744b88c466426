package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feeledger/internal/amqp"
	"feeledger/internal/core"
	"feeledger/internal/log"
	"feeledger/internal/sheets"
	"feeledger/internal/storage"
)

// ProgressStore is the part of the SQLite repository the worker needs.
type ProgressStore interface {
	LoadProgress(ctx context.Context, name string) ([][]string, error)
	CreateExport(ctx context.Context, requestID, session string) error
	MarkExportDone(ctx context.Context, requestID string, rows int) error
	MarkExportError(ctx context.Context, requestID string, cause error) error
	MarkExportFailed(ctx context.Context, requestID string, cause error) error
	PendingExports(ctx context.Context, limit int) ([]storage.ExportRecord, error)
}

// ExportWorker pushes saved sessions to the spreadsheet on request.
type ExportWorker struct {
	store     ProgressStore
	sheets    sheets.RowWriter
	timeout   time.Duration
	batchSize int
}

func NewExportWorker(store ProgressStore, writer sheets.RowWriter, timeout time.Duration, batchSize int) *ExportWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &ExportWorker{
		store:     store,
		sheets:    writer,
		timeout:   timeout,
		batchSize: batchSize,
	}
}

// HandleExportRequest processes one export request from AMQP. A session
// that was never saved is recorded as failed and not retried; any other
// failure is returned so the message is requeued.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequest) error {
	logger := w.logger(ctx).With(log.FieldRequestID, msg.RequestID, log.FieldSession, msg.Session)
	logger.InfoContext(ctx, "Processing export request")

	if err := w.store.CreateExport(ctx, msg.RequestID, msg.Session); err != nil {
		return fmt.Errorf("record export request: %w", err)
	}

	err := w.export(ctx, msg.RequestID, msg.Session)
	if errors.Is(err, storage.ErrNoProgress) {
		logger.WarnContext(ctx, "Dropping export request for unknown session")
		return nil
	}
	return err
}

// ExportNow exports session synchronously and records the attempt like
// an AMQP request. It returns the request ID it recorded.
func (w *ExportWorker) ExportNow(ctx context.Context, session string) (string, error) {
	req := amqp.NewExportRequest(session)
	if err := w.store.CreateExport(ctx, req.RequestID, req.Session); err != nil {
		return "", fmt.Errorf("record export request: %w", err)
	}
	return req.RequestID, w.export(ctx, req.RequestID, req.Session)
}

// StartupExportCheck retries exports left pending or failed by a previous
// run, for requests whose AMQP message was lost.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) error {
	logger := w.logger(ctx)
	pending, err := w.store.PendingExports(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending exports: %w", err)
	}
	if len(pending) == 0 {
		logger.InfoContext(ctx, "No pending exports found on startup", log.FieldOperation, log.OpStartup)
		return nil
	}

	successCount, errorCount := 0, 0
	for _, p := range pending {
		if err := w.export(ctx, p.RequestID, p.Session); err != nil {
			logger.ErrorContext(ctx, "Failed to export during startup",
				log.FieldRequestID, p.RequestID,
				log.FieldError, err)
			errorCount++
			continue
		}
		successCount++
	}

	logger.InfoContext(ctx, "Startup export check completed",
		log.FieldOperation, log.OpStartup,
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)
	return nil
}

func (w *ExportWorker) export(ctx context.Context, requestID, session string) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	rows, err := w.store.LoadProgress(ctx, session)
	if errors.Is(err, storage.ErrNoProgress) {
		w.mark(ctx, requestID, err, w.store.MarkExportFailed)
		return fmt.Errorf("load session %q: %w", session, err)
	}
	if err != nil {
		w.mark(ctx, requestID, err, w.store.MarkExportError)
		return fmt.Errorf("load session %q: %w", session, err)
	}

	_, skipped := core.ParseRows(rows)

	ref, err := w.sheets.WriteRows(ctx, core.Headers, rows)
	if err != nil {
		w.mark(ctx, requestID, err, w.store.MarkExportError)
		return fmt.Errorf("write rows to sheets: %w", err)
	}

	if err := w.store.MarkExportDone(ctx, requestID, len(rows)); err != nil {
		// the export itself succeeded
		w.logger(ctx).ErrorContext(ctx, "Failed to mark export done",
			log.FieldRequestID, requestID,
			log.FieldError, err)
	}

	w.logger(ctx).InfoContext(ctx, "Session exported",
		append(log.NewFields().
			WithOperation(log.OpExport).
			WithSession(session).
			WithRows(len(rows), len(skipped)).
			ToSlice(), log.FieldRequestID, requestID, log.FieldSheetsRef, ref)...)
	return nil
}

func (w *ExportWorker) mark(ctx context.Context, requestID string, cause error, record func(context.Context, string, error) error) {
	if err := record(ctx, requestID, cause); err != nil {
		w.logger(ctx).ErrorContext(ctx, "Failed to record export state",
			log.FieldRequestID, requestID,
			log.FieldError, err)
	}
}

func (w *ExportWorker) logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentWorker)
}
