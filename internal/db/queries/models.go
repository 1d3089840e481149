package queries

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Table names of the two record collections.
const (
	TableSaleRecords   = "sale_records"
	TableReturnRecords = "return_records"
)

// PeriodState is a row of period_states.
type PeriodState struct {
	ID            uuid.UUID
	PeriodID      string
	Kind          string
	Status        string
	LastAttemptAt sql.NullTime
	NextRetryAt   sql.NullTime
	IsFinal       bool
	ErrorMsg      sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecordRow is a row of sale_records or return_records.
type RecordRow struct {
	ID                int64
	Date              string
	ProductID         int64
	Article           string
	SizeLabel         string
	IsFinal           bool
	Quantity          int64
	Price             decimal.Decimal
	Amount            decimal.Decimal
	Payout            decimal.Decimal
	Logistics         decimal.Decimal
	Penalty           decimal.Decimal
	AdditionalPayment decimal.Decimal
	StorageFee        decimal.Decimal
	Deduction         decimal.Decimal
	Acceptance        decimal.Decimal
}
