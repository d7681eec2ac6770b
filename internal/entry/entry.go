// Package entry turns raw user input into validated daily entries and payout adjustments.
package entry

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fincompass/internal/model"
)

// ValidationError reports one rejected input field. Nothing is written when
// an operation returns it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && !d.IsNegative()
	})
	_ = v.RegisterValidation("positive_money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && d.IsPositive()
	})
	_ = v.RegisterValidation("order", func(fl validator.FieldLevel) bool {
		_, _, err := parseOrder(fl.Field().String())
		return err == nil
	})
	return v
}

// EntryInput is the raw form of a daily entry. Amounts are decimal strings.
// When Orders is set the entry is built per order: each element is
// "cost:profit" and the totals and order count are summed from them.
type EntryInput struct {
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	OrderCount  string   `json:"order_count" validate:"omitempty,number"`
	TotalCost   string   `json:"total_cost" validate:"omitempty,money"`
	TotalProfit string   `json:"total_profit" validate:"omitempty,money"`
	Orders      []string `json:"orders" validate:"omitempty,dive,order"`
	Refunds     string   `json:"refunds_received" validate:"omitempty,money"`
	OtherIncome string   `json:"other_income" validate:"omitempty,money"`
	Note        string   `json:"note" validate:"max=500"`
}

// PayoutInput is the raw form of a payout adjustment.
type PayoutInput struct {
	PayoutDate        string `json:"payout_date" validate:"required,datetime=2006-01-02"`
	OriginalOrderDate string `json:"original_order_date" validate:"omitempty,datetime=2006-01-02"`
	Amount            string `json:"amount" validate:"required,positive_money"`
}

// NewDailyEntry validates in and builds the entry. The estimated profit lost
// to refunds is computed here, once, as refunds times margin.
func NewDailyEntry(in EntryInput, margin decimal.Decimal) (model.DailyEntry, error) {
	if err := check(in); err != nil {
		return model.DailyEntry{}, err
	}

	date, _ := model.ParseDate(in.Date)
	e := model.DailyEntry{
		Date: date,
		Note: strings.TrimSpace(in.Note),
	}

	if len(in.Orders) > 0 {
		if in.TotalCost != "" || in.TotalProfit != "" {
			return e, &ValidationError{Field: "orders", Reason: "per-order input cannot be combined with totals"}
		}
		if in.OrderCount != "" {
			if n, _ := strconv.Atoi(in.OrderCount); n != len(in.Orders) {
				return e, &ValidationError{
					Field:  "order_count",
					Reason: fmt.Sprintf("is %d but %d orders were given", n, len(in.Orders)),
				}
			}
		}
		cost, profit := SumOrders(in.Orders)
		e.OrderCount = len(in.Orders)
		e.TotalCost = cost
		e.TotalProfit = profit
	} else {
		e.OrderCount = atoiOrZero(in.OrderCount)
		e.TotalCost = amountOrZero(in.TotalCost)
		e.TotalProfit = amountOrZero(in.TotalProfit)
	}

	e.RefundsReceived = amountOrZero(in.Refunds)
	e.OtherIncome = amountOrZero(in.OtherIncome)
	e.EstRefundProfitLoss = EstimateRefundLoss(e.RefundsReceived, margin)
	return e, nil
}

// EstimateRefundLoss is the profit assumed lost on refunded orders.
func EstimateRefundLoss(refunds, margin decimal.Decimal) decimal.Decimal {
	return refunds.Mul(margin)
}

// NewPayout validates in and builds the payout. The id is assigned by the store.
func NewPayout(in PayoutInput) (model.PayoutAdjustment, error) {
	if err := check(in); err != nil {
		return model.PayoutAdjustment{}, err
	}

	paid, _ := model.ParseDate(in.PayoutDate)
	po := model.PayoutAdjustment{
		PayoutDate: paid,
		Amount:     amountOrZero(in.Amount),
	}
	if s := strings.TrimSpace(in.OriginalOrderDate); s != "" {
		origin, _ := model.ParseDate(s)
		po.OriginalOrderDate = &origin
	}
	return po, nil
}

// SumOrders totals already validated "cost:profit" pairs.
func SumOrders(orders []string) (cost, profit decimal.Decimal) {
	for _, o := range orders {
		c, p, err := parseOrder(o)
		if err != nil {
			continue
		}
		cost = cost.Add(c)
		profit = profit.Add(p)
	}
	return cost, profit
}

func parseOrder(s string) (decimal.Decimal, decimal.Decimal, error) {
	costStr, profitStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return decimal.Zero, decimal.Zero, fmt.Errorf("order %q must be cost:profit", s)
	}
	cost, err := ParseAmount(costStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	profit, err := ParseAmount(profitStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return cost, profit, nil
}

// ParseAmount parses a non-negative decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%q must not be negative", s)
	}
	return d, nil
}

func amountOrZero(s string) decimal.Decimal {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero
	}
	d, _ := ParseAmount(s)
	return d
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func check(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fe := errs[0]
		return &ValidationError{Field: fieldName(fe), Reason: reason(fe)}
	}
	return &ValidationError{Field: "input", Reason: err.Error()}
}

// fieldName strips the dive index so "orders[2]" reads as "orders".
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i > 0 {
		return name[:i]
	}
	return name
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return fmt.Sprintf("%q must be a YYYY-MM-DD date", fe.Value())
	case "number":
		return fmt.Sprintf("%q must be a whole number >= 0", fe.Value())
	case "money":
		return fmt.Sprintf("%q must be an amount >= 0", fe.Value())
	case "positive_money":
		return fmt.Sprintf("%q must be an amount > 0", fe.Value())
	case "order":
		return fmt.Sprintf("%q must be cost:profit with amounts >= 0", fe.Value())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}

// ValidateDate checks a single YYYY-MM-DD field, for interactive forms.
func ValidateDate(s string) error {
	_, err := model.ParseDate(s)
	return err
}

// ValidateOptionalDate accepts an empty string or a YYYY-MM-DD date.
func ValidateOptionalDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return ValidateDate(s)
}

// ValidateAmount checks a non-negative amount; empty means zero.
func ValidateAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := ParseAmount(s)
	return err
}

// ValidatePositiveAmount checks an amount greater than zero.
func ValidatePositiveAmount(s string) error {
	d, err := ParseAmount(s)
	if err != nil {
		return err
	}
	if !d.IsPositive() {
		return fmt.Errorf("amount must be greater than zero")
	}
	return nil
}

// ValidateCount checks a non-negative whole number; empty means zero.
func ValidateCount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("%q must be a whole number >= 0", s)
	}
	return nil
}

// ValidateOrder checks one "cost:profit" pair.
func ValidateOrder(s string) error {
	_, _, err := parseOrder(s)
	return err
}
