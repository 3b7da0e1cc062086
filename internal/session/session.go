package session

import "time"

// Item is one pending line in a user's sales session. Insertion order is
// preserved so the table sees lines in the order they were rung up.
type Item struct {
	MerchandiseID string    `json:"merchandise_id"`
	Quantity      int       `json:"quantity"`
	AddedAt       time.Time `json:"added_at"`
}

// Document is the full session state for one user. The whole document is
// written on every mutation; concurrent writers are last-write-wins.
type Document struct {
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Find returns the index of the entry for the given merchandise id, or -1.
func (d *Document) Find(merchandiseID string) int {
	if d == nil {
		return -1
	}
	for i, item := range d.Items {
		if item.MerchandiseID == merchandiseID {
			return i
		}
	}
	return -1
}

// Empty reports whether the session has no pending lines.
func (d *Document) Empty() bool {
	return d == nil || len(d.Items) == 0
}

// EnrichedItem is a session line joined with live merchandise data.
// Subtotal reflects the price at the moment of the call, not at add time.
type EnrichedItem struct {
	MerchandiseID  string `json:"merchandise_id"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	SubtotalCents  int64  `json:"subtotal_cents"`
	Stock          *int   `json:"stock,omitempty"`
}
