package domain

import "dentalcare_backend/platform/apperr"

// PaymentStatus describes how far a bill has been settled.
type PaymentStatus string

const (
	StatusUnpaid  PaymentStatus = "BELUM_BAYAR"
	StatusPartial PaymentStatus = "SEBAGIAN"
	StatusPaid    PaymentStatus = "LUNAS"
)

// Bill combines the total treatment cost, the discount on it and the amount paid.
type Bill struct {
	total    Money
	discount Money
	paid     Money
}

// NewBill rejects a discount larger than the total.
func NewBill(total, discount, paid Money) (Bill, error) {
	if discount.IsGreaterThan(total) {
		return Bill{}, apperr.InvalidValueObject("discount cannot exceed total cost")
	}
	return Bill{total: total, discount: discount, paid: paid}, nil
}

func (b Bill) Total() Money    { return b.total }
func (b Bill) Discount() Money { return b.discount }
func (b Bill) Paid() Money     { return b.paid }

// AmountDue is the total after discount.
func (b Bill) AmountDue() Money {
	return b.total.Subtract(b.discount)
}

// Change is what is returned to the patient when they overpay.
func (b Bill) Change() Money {
	return b.paid.Subtract(b.AmountDue())
}

// Outstanding is what the patient still owes.
func (b Bill) Outstanding() Money {
	return b.AmountDue().Subtract(b.paid)
}

func (b Bill) Status() PaymentStatus {
	switch {
	case b.paid.IsGreaterThanOrEqual(b.AmountDue()):
		return StatusPaid
	case b.paid.IsZero():
		return StatusUnpaid
	default:
		return StatusPartial
	}
}
