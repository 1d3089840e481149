// Package aggregate reduces raw report rows into per-day, per-product summary records.
package aggregate

import (
	"github.com/shopspring/decimal"
)

// Flow is the direction of a record: sale-flow or return.
type Flow string

const (
	// FlowSale covers sales, reversals and every incidental operation type.
	FlowSale Flow = "sale"
	// FlowReturn covers only actual returns.
	FlowReturn Flow = "return"
)

// Key identifies an aggregated bucket. Sale and return buckets never share a key.
type Key struct {
	Date      string
	ProductID int64
	SizeLabel string
	Flow      Flow
}

// Record is an aggregated summary for one (date, product, size, flow).
type Record struct {
	Date      string
	ProductID int64
	Article   string
	SizeLabel string
	Flow      Flow

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

	// IsFinal marks records produced by a weekly reconciliation fetch.
	IsFinal bool
}

// Key returns the bucket key of the record.
func (r Record) Key() Key {
	return Key{Date: r.Date, ProductID: r.ProductID, SizeLabel: r.SizeLabel, Flow: r.Flow}
}

// Add sums other into r field by field. Identity fields and IsFinal are left untouched;
// a zero price is filled from other.
func (r *Record) Add(other Record) {
	r.sum(other)
	r.backfillPrice()
}

func (r *Record) sum(other Record) {
	r.Quantity += other.Quantity
	r.Amount = r.Amount.Add(other.Amount)
	r.Payout = r.Payout.Add(other.Payout)
	r.Logistics = r.Logistics.Add(other.Logistics)
	r.Penalty = r.Penalty.Add(other.Penalty)
	r.AdditionalPayment = r.AdditionalPayment.Add(other.AdditionalPayment)
	r.StorageFee = r.StorageFee.Add(other.StorageFee)
	r.Deduction = r.Deduction.Add(other.Deduction)
	r.Acceptance = r.Acceptance.Add(other.Acceptance)

	if r.Article == "" {
		r.Article = other.Article
	}
	if r.Price.IsZero() {
		r.Price = other.Price
	}
}

// backfillPrice derives the unit price from amount and quantity when no row supplied one.
func (r *Record) backfillPrice() {
	if !r.Price.IsZero() || r.Quantity == 0 || r.Amount.IsZero() {
		return
	}
	r.Price = r.Amount.Div(decimal.NewFromInt(r.Quantity)).Abs().Round(2)
}
