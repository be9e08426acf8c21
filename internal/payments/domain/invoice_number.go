package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"dentalcare_backend/platform/apperr"
)

const (
	invoiceDateLayout  = "20060102"
	maxInvoiceSequence = 9999
)

var invoiceNumberPattern = regexp.MustCompile(`^INV/\d{8}/\d{4}$`)

// InvoiceNumber has the form INV/YYYYMMDD/NNNN.
type InvoiceNumber struct {
	value string
}

func NewInvoiceNumber(s string) (InvoiceNumber, error) {
	if !invoiceNumberPattern.MatchString(s) {
		return InvoiceNumber{}, apperr.InvalidValueObject("invoice number must match INV/YYYYMMDD/NNNN")
	}
	return InvoiceNumber{value: s}, nil
}

// GenerateInvoiceNumber formats the invoice number for the given day and
// daily sequence (1..9999).
func GenerateInvoiceNumber(date time.Time, sequence int) (InvoiceNumber, error) {
	if sequence < 1 || sequence > maxInvoiceSequence {
		return InvoiceNumber{}, apperr.InvalidValueObject(fmt.Sprintf("invoice sequence must be between 1 and %d", maxInvoiceSequence))
	}
	return NewInvoiceNumber(fmt.Sprintf("INV/%s/%04d", date.Format(invoiceDateLayout), sequence))
}

func (n InvoiceNumber) String() string {
	return n.value
}

func (n InvoiceNumber) Equals(other InvoiceNumber) bool {
	return n.value == other.value
}

// Date returns the day embedded in the number. The pattern only guarantees
// eight digits, so a calendar-invalid date yields the zero time.
func (n InvoiceNumber) Date() time.Time {
	if len(n.value) < 12 {
		return time.Time{}
	}
	t, err := time.Parse(invoiceDateLayout, n.value[4:12])
	if err != nil {
		return time.Time{}
	}
	return t
}

// Sequence returns the daily sequence embedded in the number.
func (n InvoiceNumber) Sequence() int {
	if len(n.value) < 4 {
		return 0
	}
	seq, err := strconv.Atoi(n.value[len(n.value)-4:])
	if err != nil {
		return 0
	}
	return seq
}
