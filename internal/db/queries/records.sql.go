package queries

import (
	"context"
	"fmt"
)

const recordColumns = `id, date, product_id, article, size_label, is_final, quantity,
    price, amount, payout, logistics, penalty, additional_payment, storage_fee, deduction, acceptance`

// checkTable guards the table name interpolated into record statements.
func checkTable(table string) error {
	switch table {
	case TableSaleRecords, TableReturnRecords:
		return nil
	default:
		return fmt.Errorf("unknown record table %q", table)
	}
}

func scanRecordRow(row interface{ Scan(dest ...any) error }) (RecordRow, error) {
	var i RecordRow
	err := row.Scan(
		&i.ID,
		&i.Date,
		&i.ProductID,
		&i.Article,
		&i.SizeLabel,
		&i.IsFinal,
		&i.Quantity,
		&i.Price,
		&i.Amount,
		&i.Payout,
		&i.Logistics,
		&i.Penalty,
		&i.AdditionalPayment,
		&i.StorageFee,
		&i.Deduction,
		&i.Acceptance,
	)
	return i, err
}

func (q *Queries) listRecords(ctx context.Context, query string, args ...any) ([]RecordRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []RecordRow
	for rows.Next() {
		i, err := scanRecordRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetRecordParams identifies one stored record.
type GetRecordParams struct {
	Date      string
	ProductID int64
	SizeLabel string
	IsFinal   bool
}

// GetRecord returns sql.ErrNoRows when no record matches.
func (q *Queries) GetRecord(ctx context.Context, table string, arg GetRecordParams) (RecordRow, error) {
	if err := checkTable(table); err != nil {
		return RecordRow{}, err
	}
	query := `SELECT ` + recordColumns + `
FROM ` + table + `
WHERE date = $1 AND product_id = $2 AND size_label = $3 AND is_final = $4`
	return scanRecordRow(q.db.QueryRowContext(ctx, query, arg.Date, arg.ProductID, arg.SizeLabel, arg.IsFinal))
}

// InsertRecord writes a new record. The ID field is ignored.
func (q *Queries) InsertRecord(ctx context.Context, table string, arg RecordRow) error {
	if err := checkTable(table); err != nil {
		return err
	}
	query := `INSERT INTO ` + table + ` (date, product_id, article, size_label, is_final, quantity,
    price, amount, payout, logistics, penalty, additional_payment, storage_fee, deduction, acceptance)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := q.db.ExecContext(ctx, query,
		arg.Date,
		arg.ProductID,
		arg.Article,
		arg.SizeLabel,
		arg.IsFinal,
		arg.Quantity,
		arg.Price,
		arg.Amount,
		arg.Payout,
		arg.Logistics,
		arg.Penalty,
		arg.AdditionalPayment,
		arg.StorageFee,
		arg.Deduction,
		arg.Acceptance,
	)
	return err
}

// UpdateRecordTotals overwrites the article and numeric columns of the record with arg.ID.
func (q *Queries) UpdateRecordTotals(ctx context.Context, table string, arg RecordRow) error {
	if err := checkTable(table); err != nil {
		return err
	}
	query := `UPDATE ` + table + `
SET article = $1, quantity = $2, price = $3, amount = $4, payout = $5, logistics = $6,
    penalty = $7, additional_payment = $8, storage_fee = $9, deduction = $10, acceptance = $11
WHERE id = $12`
	_, err := q.db.ExecContext(ctx, query,
		arg.Article,
		arg.Quantity,
		arg.Price,
		arg.Amount,
		arg.Payout,
		arg.Logistics,
		arg.Penalty,
		arg.AdditionalPayment,
		arg.StorageFee,
		arg.Deduction,
		arg.Acceptance,
		arg.ID,
	)
	return err
}

// DeleteRecordsInRange removes every record dated within [from, to] and returns the count.
func (q *Queries) DeleteRecordsInRange(ctx context.Context, table, from, to string) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	query := `DELETE FROM ` + table + ` WHERE substr(date, 1, 10) BETWEEN $1 AND $2`
	res, err := q.db.ExecContext(ctx, query, from, to)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteTemporaryRecordsInRange removes the non-final records dated within [from, to].
func (q *Queries) DeleteTemporaryRecordsInRange(ctx context.Context, table, from, to string) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	query := `DELETE FROM ` + table + ` WHERE substr(date, 1, 10) BETWEEN $1 AND $2 AND is_final = FALSE`
	res, err := q.db.ExecContext(ctx, query, from, to)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListRecordsInRange lists records dated within [from, to] in key order.
func (q *Queries) ListRecordsInRange(ctx context.Context, table, from, to string) ([]RecordRow, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	query := `SELECT ` + recordColumns + `
FROM ` + table + `
WHERE substr(date, 1, 10) BETWEEN $1 AND $2
ORDER BY date, product_id, size_label, is_final`
	return q.listRecords(ctx, query, from, to)
}

// ListSuspiciousSales lists sale records without a size label whose quantity exceeds threshold.
func (q *Queries) ListSuspiciousSales(ctx context.Context, threshold int64) ([]RecordRow, error) {
	query := `SELECT ` + recordColumns + `
FROM ` + TableSaleRecords + `
WHERE size_label = '' AND quantity > $1
ORDER BY date, product_id`
	return q.listRecords(ctx, query, threshold)
}

// CountRecordsInRange counts records dated within [from, to].
func (q *Queries) CountRecordsInRange(ctx context.Context, table, from, to string) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	query := `SELECT COUNT(*) FROM ` + table + ` WHERE substr(date, 1, 10) BETWEEN $1 AND $2`
	var n int64
	err := q.db.QueryRowContext(ctx, query, from, to).Scan(&n)
	return n, err
}
