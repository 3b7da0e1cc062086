package outbox

import "time"

// SaleLine is one committed sale inside a SaleRecordedPayload.
type SaleLine struct {
	SaleID         string `json:"saleId"`
	MerchandiseID  string `json:"merchandiseId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
	PaymentType    string `json:"paymentType"`
}

// SaleRecordedPayload is the data for a sale.recorded event, one per
// committed session.
type SaleRecordedPayload struct {
	BatchID    string     `json:"batchId"`
	ShowID     *string    `json:"showId,omitempty"`
	Lines      []SaleLine `json:"lines"`
	TotalCents int64      `json:"totalCents"`
	SoldAt     time.Time  `json:"soldAt"`
}

// StockAlertRaisedPayload is the data for a stock.alert_raised event.
type StockAlertRaisedPayload struct {
	AlertID       string `json:"alertId"`
	MerchandiseID string `json:"merchandiseId"`
	Stock         int    `json:"stock"`
	Threshold     int    `json:"threshold"`
}
