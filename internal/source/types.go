package source

import (
	"encoding/json"

	"github.com/theirongolddev/fincompass/internal/entry"
)

// Record types routed by the top-level "type" field.
const (
	TypeEntry  = "entry"
	TypePayout = "payout"
)

// Number holds a JSON number or string verbatim so money keeps its exact
// decimal text.
type Number string

// UnmarshalJSON accepts 12.5, "12.5" and null.
func (n *Number) UnmarshalJSON(b []byte) error {
	switch {
	case string(b) == "null":
		*n = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = Number(num.String())
	return nil
}

// RawRecord is one line of a JSONL record file. Entry lines use the day
// fields, payout lines the payout fields.
type RawRecord struct {
	Type string `json:"type"`

	Date        string   `json:"date,omitempty"`
	OrderCount  Number   `json:"order_count,omitempty"`
	TotalCost   Number   `json:"total_cost,omitempty"`
	TotalProfit Number   `json:"total_profit,omitempty"`
	Orders      []string `json:"orders,omitempty"`
	Refunds     Number   `json:"refunds_received,omitempty"`
	OtherIncome Number   `json:"other_income,omitempty"`
	Note        string   `json:"note,omitempty"`

	PayoutDate        string `json:"payout_date,omitempty"`
	OriginalOrderDate string `json:"original_order_date,omitempty"`
	Amount            Number `json:"amount,omitempty"`
}

// EntryInput converts an entry line to form input.
func (r RawRecord) EntryInput() entry.EntryInput {
	return entry.EntryInput{
		Date:        r.Date,
		OrderCount:  string(r.OrderCount),
		TotalCost:   string(r.TotalCost),
		TotalProfit: string(r.TotalProfit),
		Orders:      r.Orders,
		Refunds:     string(r.Refunds),
		OtherIncome: string(r.OtherIncome),
		Note:        r.Note,
	}
}

// PayoutInput converts a payout line to form input.
func (r RawRecord) PayoutInput() entry.PayoutInput {
	return entry.PayoutInput{
		PayoutDate:        r.PayoutDate,
		OriginalOrderDate: r.OriginalOrderDate,
		Amount:            string(r.Amount),
	}
}

// Line pairs parsed input with its position in the source file.
type Line[T any] struct {
	File  string
	Line  int
	Input T
}

// DiscoveredFile represents a JSONL file found during scanning.
type DiscoveredFile struct {
	Path string
	Name string // base name, for messages
}
