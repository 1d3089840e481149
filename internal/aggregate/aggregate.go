package aggregate

import (
	"cmp"
	"slices"

	"github.com/NikolayVerchenko/wb-analytics-sub001/internal/report"
)

// Operation names used by the upstream report.
const (
	OperationSale           = "Продажа"
	OperationReturn         = "Возврат"
	OperationSaleReversal   = "Сторно продаж"
	OperationReturnReversal = "Сторно возвратов"
)

// Rule classifies rows by operation name.
type Rule struct {
	// ReturnOperation is the operation name that routes a row to the return flow.
	ReturnOperation string
	// CountedOperations are the operations whose quantity is summed.
	// Every other operation contributes money but no units.
	CountedOperations []string
}

// DefaultRule returns the classification used by the upstream report.
func DefaultRule() Rule {
	return Rule{
		ReturnOperation: OperationReturn,
		CountedOperations: []string{
			OperationSale,
			OperationReturn,
			OperationSaleReversal,
			OperationReturnReversal,
		},
	}
}

// FlowOf classifies a row by its operation name.
func (r Rule) FlowOf(operation string) Flow {
	if operation == r.ReturnOperation {
		return FlowReturn
	}
	return FlowSale
}

// Counts reports whether the operation contributes to unit counts.
func (r Rule) Counts(operation string) bool {
	return slices.Contains(r.CountedOperations, operation)
}

// NormalizeDate strips any time component from a report timestamp.
// Stored dates and range filters use the same normalization.
func NormalizeDate(ts string) string {
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}

// Aggregate reduces rows into sale-flow and return records. The result depends only on
// the input and is sorted by date, product and size.
func Aggregate(rows []report.Row, rule Rule) (sales, returns []Record) {
	buckets := make(map[Key]*Record, len(rows))
	order := make([]Key, 0, len(rows))

	for i := range rows {
		rec := fromRow(&rows[i], rule)
		key := rec.Key()
		if existing, ok := buckets[key]; ok {
			existing.sum(rec)
			continue
		}
		buckets[key] = &rec
		order = append(order, key)
	}

	for _, key := range order {
		rec := *buckets[key]
		rec.backfillPrice()
		if rec.Flow == FlowReturn {
			returns = append(returns, rec)
		} else {
			sales = append(sales, rec)
		}
	}

	SortRecords(sales)
	SortRecords(returns)
	return sales, returns
}

// SortRecords orders records by date, product, size and flow.
func SortRecords(records []Record) {
	slices.SortFunc(records, func(a, b Record) int {
		return cmp.Or(
			cmp.Compare(a.Date, b.Date),
			cmp.Compare(a.ProductID, b.ProductID),
			cmp.Compare(a.SizeLabel, b.SizeLabel),
			cmp.Compare(a.Flow, b.Flow),
		)
	})
}

func fromRow(row *report.Row, rule Rule) Record {
	rec := Record{
		Date:              NormalizeDate(row.Date),
		ProductID:         row.ProductID,
		Article:           row.Article,
		SizeLabel:         row.SizeLabel,
		Flow:              rule.FlowOf(row.Operation),
		Price:             row.RetailPrice,
		Amount:            row.RetailAmount,
		Payout:            row.Payout,
		Logistics:         row.DeliveryCost,
		Penalty:           row.Penalty,
		AdditionalPayment: row.AdditionalPayment,
		StorageFee:        row.StorageFee,
		Deduction:         row.Deduction,
		Acceptance:        row.Acceptance,
	}
	if rule.Counts(row.Operation) {
		rec.Quantity = row.Quantity
	}
	return rec
}
