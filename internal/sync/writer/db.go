package writer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/aggregate"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/db/queries"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/period"
	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/sync/state"
)

// dbSyncWriter is a SyncWriter implementation that persists records to a SQL store
type dbSyncWriter struct {
	db        *sql.DB
	registry  state.TxBinder
	txOptions *sql.TxOptions
}

// Option configures the database writer.
type Option func(*dbSyncWriter)

// WithIsolation sets the isolation level of write transactions.
func WithIsolation(level sql.IsolationLevel) Option {
	return func(w *dbSyncWriter) {
		w.txOptions = &sql.TxOptions{Isolation: level}
	}
}

// NewDBSyncWriter creates a writer over db. Registry updates join the write transaction through registry.
func NewDBSyncWriter(db *sql.DB, registry state.TxBinder, opts ...Option) (SyncWriter, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	w := &dbSyncWriter{db: db, registry: registry}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *dbSyncWriter) SaveFinal(
	ctx context.Context, data *SyncData, rng period.Range, update RegistryUpdate,
) (Result, error) {
	return w.replace(ctx, data, rng, true, update)
}

func (w *dbSyncWriter) SaveTemporary(
	ctx context.Context, data *SyncData, rng period.Range, update RegistryUpdate,
) (Result, error) {
	return w.replace(ctx, data, rng, false, update)
}

func (w *dbSyncWriter) ClearRange(ctx context.Context, rng period.Range, update RegistryUpdate) (int64, error) {
	var deleted int64
	err := w.inTx(ctx, func(q *queries.Queries, tx *sql.Tx) error {
		n, err := deleteRange(ctx, q, rng, true)
		if err != nil {
			return err
		}
		deleted = n
		return w.runUpdate(ctx, tx, update)
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// replace deletes the range (all records when final, temporary ones otherwise), writes data
// with the given finality and runs update, all in one transaction.
func (w *dbSyncWriter) replace(
	ctx context.Context, data *SyncData, rng period.Range, final bool, update RegistryUpdate,
) (Result, error) {
	var result Result
	err := w.inTx(ctx, func(q *queries.Queries, tx *sql.Tx) error {
		result = Result{}

		deleted, err := deleteRange(ctx, q, rng, final)
		if err != nil {
			return err
		}
		result.Deleted = deleted

		if !data.Empty() {
			n, skipped, err := writeRecords(ctx, q, queries.TableSaleRecords, data.Sales, rng, final)
			if err != nil {
				return fmt.Errorf("failed to write sale records: %w", err)
			}
			result.Sales, result.Skipped = n, skipped

			n, skipped, err = writeRecords(ctx, q, queries.TableReturnRecords, data.Returns, rng, final)
			if err != nil {
				return fmt.Errorf("failed to write return records: %w", err)
			}
			result.Returns = n
			result.Skipped += skipped
		}

		return w.runUpdate(ctx, tx, update)
	})
	if err != nil {
		return Result{}, err
	}

	if result.Skipped > 0 {
		slog.WarnContext(ctx, "Records outside the task range were not written",
			"range", rng.String(), "skipped", result.Skipped)
	}
	return result, nil
}

func (w *dbSyncWriter) inTx(ctx context.Context, fn func(q *queries.Queries, tx *sql.Tx) error) error {
	tx, err := w.db.BeginTx(ctx, w.txOptions)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			slog.Warn("Failed to roll back write transaction", "error", rollbackErr)
		}
	}()

	if err := fn(queries.New(tx), tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (w *dbSyncWriter) runUpdate(ctx context.Context, tx *sql.Tx, update RegistryUpdate) error {
	if update == nil {
		return nil
	}
	if err := update(ctx, w.registry.WithTx(tx)); err != nil {
		return fmt.Errorf("registry update failed: %w", err)
	}
	return nil
}

func deleteRange(ctx context.Context, q *queries.Queries, rng period.Range, all bool) (int64, error) {
	from, to := rng.StartDate(), rng.EndDate()
	var total int64
	for _, table := range []string{queries.TableSaleRecords, queries.TableReturnRecords} {
		var (
			n   int64
			err error
		)
		if all {
			n, err = q.DeleteRecordsInRange(ctx, table, from, to)
		} else {
			n, err = q.DeleteTemporaryRecordsInRange(ctx, table, from, to)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to delete %s in %s..%s: %w", table, from, to, err)
		}
		total += n
	}
	return total, nil
}

// writeRecords inserts records, summing each into an existing record with the same key and finality.
func writeRecords(
	ctx context.Context, q *queries.Queries, table string, records []aggregate.Record, rng period.Range, final bool,
) (written, skipped int, err error) {
	for _, rec := range records {
		date := aggregate.NormalizeDate(rec.Date)
		if !rng.ContainsDate(date) {
			skipped++
			continue
		}
		rec.Date = date
		rec.IsFinal = final

		existing, err := q.GetRecord(ctx, table, queries.GetRecordParams{
			Date:      rec.Date,
			ProductID: rec.ProductID,
			SizeLabel: rec.SizeLabel,
			IsFinal:   final,
		})
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if err := q.InsertRecord(ctx, table, toRow(rec)); err != nil {
				return written, skipped, err
			}
		case err != nil:
			return written, skipped, err
		default:
			merged := fromRow(existing, rec.Flow)
			merged.Add(rec)
			row := toRow(merged)
			row.ID = existing.ID
			if err := q.UpdateRecordTotals(ctx, table, row); err != nil {
				return written, skipped, err
			}
		}
		written++
	}
	return written, skipped, nil
}

func toRow(r aggregate.Record) queries.RecordRow {
	return queries.RecordRow{
		Date:              r.Date,
		ProductID:         r.ProductID,
		Article:           r.Article,
		SizeLabel:         r.SizeLabel,
		IsFinal:           r.IsFinal,
		Quantity:          r.Quantity,
		Price:             r.Price,
		Amount:            r.Amount,
		Payout:            r.Payout,
		Logistics:         r.Logistics,
		Penalty:           r.Penalty,
		AdditionalPayment: r.AdditionalPayment,
		StorageFee:        r.StorageFee,
		Deduction:         r.Deduction,
		Acceptance:        r.Acceptance,
	}
}

func fromRow(row queries.RecordRow, flow aggregate.Flow) aggregate.Record {
	return aggregate.Record{
		Date:              row.Date,
		ProductID:         row.ProductID,
		Article:           row.Article,
		SizeLabel:         row.SizeLabel,
		Flow:              flow,
		IsFinal:           row.IsFinal,
		Quantity:          row.Quantity,
		Price:             row.Price,
		Amount:            row.Amount,
		Payout:            row.Payout,
		Logistics:         row.Logistics,
		Penalty:           row.Penalty,
		AdditionalPayment: row.AdditionalPayment,
		StorageFee:        row.StorageFee,
		Deduction:         row.Deduction,
		Acceptance:        row.Acceptance,
	}
}
