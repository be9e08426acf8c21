package service

import (
	"errors"
	"strings"
	"time"

	"dentalcare_backend/internal/payments/domain"
	sharedvalidator "dentalcare_backend/internal/shared/validator"
	"dentalcare_backend/platform/apperr"
	"dentalcare_backend/platform/validator"
)

const defaultInvoiceSequence = 1

// PreviewInput holds a payment whose fields already passed the struct rules.
type PreviewInput struct {
	TotalBiaya        float64
	DiskonTotal       float64
	JumlahBayar       float64
	TanggalPembayaran string
	NomorInvoice      string
	UrutanInvoice     int
}

// Preview is a bill settled by one payment.
type Preview struct {
	Invoice     domain.InvoiceNumber
	PaidAt      domain.PaymentDate
	Bill        domain.Bill
	AmountDue   domain.Money
	Change      domain.Money
	Outstanding domain.Money
	Status      domain.PaymentStatus
}

type Service struct {
	now func() time.Time
}

// New creates a Service. now may be nil.
func New(now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{now: now}
}

// Preview builds the value objects of a payment and computes its settlement.
// Nothing is persisted.
func (s *Service) Preview(in PreviewInput) (Preview, error) {
	total, err := domain.NewMoney(in.TotalBiaya)
	if err != nil {
		return Preview{}, withField(err, sharedvalidator.FieldTotalBiaya)
	}
	discount, err := domain.NewMoney(in.DiskonTotal)
	if err != nil {
		return Preview{}, withField(err, sharedvalidator.FieldDiskonTotal)
	}
	paid, err := domain.NewMoney(in.JumlahBayar)
	if err != nil {
		return Preview{}, withField(err, sharedvalidator.FieldJumlahBayar)
	}

	bill, err := domain.NewBill(total, discount, paid)
	if err != nil {
		return Preview{}, withField(err, sharedvalidator.FieldDiskonTotal)
	}

	now := s.now()
	paidAt, err := s.paymentDate(in.TanggalPembayaran, now)
	if err != nil {
		return Preview{}, withField(err, sharedvalidator.FieldTanggalPembayaran)
	}

	invoice, err := invoiceNumber(in.NomorInvoice, in.UrutanInvoice, paidAt)
	if err != nil {
		return Preview{}, withField(err, "nomorInvoice")
	}

	return Preview{
		Invoice:     invoice,
		PaidAt:      paidAt,
		Bill:        bill,
		AmountDue:   bill.AmountDue(),
		Change:      bill.Change(),
		Outstanding: bill.Outstanding(),
		Status:      bill.Status(),
	}, nil
}

// ValidateForm checks a loosely typed payment form, as submitted before the
// client has coerced its fields, and reports every failing field.
func (s *Service) ValidateForm(record validator.Record) validator.Result {
	return sharedvalidator.PaymentSchema.Validate(record)
}

func (s *Service) paymentDate(raw string, now time.Time) (domain.PaymentDate, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.NewPaymentDateAt(now, now)
	}
	t, err := domain.ParseDate(raw)
	if err != nil {
		return domain.PaymentDate{}, apperr.Wrap(apperr.KindInvalidValueObject, "invalid payment date", err)
	}
	return domain.NewPaymentDateAt(t, now)
}

func invoiceNumber(raw string, sequence int, paidAt domain.PaymentDate) (domain.InvoiceNumber, error) {
	if raw != "" {
		return domain.NewInvoiceNumber(strings.TrimSpace(raw))
	}
	if sequence == 0 {
		sequence = defaultInvoiceSequence
	}
	return domain.GenerateInvoiceNumber(paidAt.Time(), sequence)
}

func withField(err error, field string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Field == "" {
		return appErr.WithField(field)
	}
	return err
}
