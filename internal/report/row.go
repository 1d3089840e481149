// Package report contains the raw report row model and the client for the
// upstream reporting API.
package report

import (
	"github.com/shopspring/decimal"
)

// Row is a single line of the seller's transactional report.
//
// Every numeric field is a concrete value: decimal.Decimal and int64 zero values
// are the defaults for fields the upstream omits or sends as null, so consumers
// never need to re-derive defaults.
type Row struct {
	// RowID is the upstream row identifier, also used as the pagination cursor.
	RowID    int64 `json:"rrd_id"`
	ReportID int64 `json:"realizationreport_id"`

	// Date is the operation timestamp as sent by the upstream. It may carry a time component.
	Date string `json:"rr_dt"`

	ProductID int64  `json:"nm_id"`
	Article   string `json:"sa_name"`
	Brand     string `json:"brand_name"`
	Subject   string `json:"subject_name"`
	SizeLabel string `json:"ts_name"`
	Barcode   string `json:"barcode"`

	// Operation is the operation name, e.g. "Продажа", "Возврат", "Логистика".
	Operation string `json:"supplier_oper_name"`
	DocType   string `json:"doc_type_name"`

	Quantity          int64           `json:"quantity"`
	RetailPrice       decimal.Decimal `json:"retail_price"`
	RetailAmount      decimal.Decimal `json:"retail_amount"`
	Payout            decimal.Decimal `json:"ppvz_for_pay"`
	DeliveryCost      decimal.Decimal `json:"delivery_rub"`
	Penalty           decimal.Decimal `json:"penalty"`
	AdditionalPayment decimal.Decimal `json:"additional_payment"`
	StorageFee        decimal.Decimal `json:"storage_fee"`
	Deduction         decimal.Decimal `json:"deduction"`
	Acceptance        decimal.Decimal `json:"acceptance"`
}
