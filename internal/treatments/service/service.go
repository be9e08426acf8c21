package service

import (
	"errors"
	"fmt"

	paymentdomain "dentalcare_backend/internal/payments/domain"
	sharedvalidator "dentalcare_backend/internal/shared/validator"
	"dentalcare_backend/internal/treatments/domain"
	"dentalcare_backend/platform/apperr"
	"dentalcare_backend/platform/validator"

	"golang.org/x/text/language"
)

const (
	msgNoItems       = "at least one item is required"
	fieldItems       = "items"
	fieldTindakanID  = "tindakanId"
	fieldRekamMedis  = "rekamMedisId"
	fieldDurasi      = "durasi"
	maxItemsPerVisit = 100
)

// Line is one priced item of a visit.
type Line struct {
	ItemID      string
	Quantity    float64
	UnitPrice   paymentdomain.Money
	Subtotal    paymentdomain.Money
	Discount    paymentdomain.Money
	Net         paymentdomain.Money
	Duration    *domain.TreatmentDuration
	DurationFmt string
}

// Preview totals the lines of a visit.
type Preview struct {
	Lines            []Line
	Subtotal         paymentdomain.Money
	Discount         paymentdomain.Money
	Total            paymentdomain.Money
	TotalDuration    domain.TreatmentDuration
	TotalDurationFmt string
}

type Service struct{}

func New() *Service {
	return &Service{}
}

// PreviewTreatmentItems validates treatment lines and prices them. Durations
// are rendered for lang.
func (s *Service) PreviewTreatmentItems(items []validator.Record, lang language.Tag) (Preview, error) {
	return s.preview(sharedvalidator.TreatmentItemSchema, fieldTindakanID, items, lang)
}

// PreviewMedicalRecordItems is PreviewTreatmentItems for the billed lines of
// a medical record.
func (s *Service) PreviewMedicalRecordItems(items []validator.Record, lang language.Tag) (Preview, error) {
	return s.preview(sharedvalidator.MedicalRecordItemSchema, fieldRekamMedis, items, lang)
}

// ValidateTreatment checks a catalogue entry.
func (s *Service) ValidateTreatment(record validator.Record) validator.Result {
	return sharedvalidator.TreatmentSchema.Validate(record)
}

func (s *Service) preview(schema *validator.Schema, idField string, items []validator.Record, lang language.Tag) (Preview, error) {
	if len(items) == 0 {
		return Preview{}, apperr.InvalidInput(msgNoItems).WithField(fieldItems)
	}
	if len(items) > maxItemsPerVisit {
		return Preview{}, apperr.InvalidInput(fmt.Sprintf("at most %d items are allowed", maxItemsPerVisit)).WithField(fieldItems)
	}

	errs := make(map[string]string)
	for i, item := range items {
		result := schema.Validate(item)
		for field, msg := range result.Errors {
			errs[fmt.Sprintf("%s[%d].%s", fieldItems, i, field)] = msg
		}
	}
	if len(errs) > 0 {
		return Preview{}, validator.Result{IsValid: false, Errors: errs}.Err()
	}

	preview := Preview{Lines: make([]Line, 0, len(items))}
	totalMinutes := 0
	for i, item := range items {
		line, err := priceLine(item, idField, lang)
		if err != nil {
			return Preview{}, withField(err, fmt.Sprintf("%s[%d]", fieldItems, i))
		}
		preview.Lines = append(preview.Lines, line)
		preview.Subtotal = preview.Subtotal.Add(line.Subtotal)
		preview.Discount = preview.Discount.Add(line.Discount)
		preview.Total = preview.Total.Add(line.Net)
		if line.Duration != nil {
			totalMinutes += line.Duration.Minutes()
		}
	}

	total, err := domain.NewTreatmentDuration(totalMinutes)
	if err != nil {
		return Preview{}, withField(err, fieldDurasi)
	}
	preview.TotalDuration = total
	preview.TotalDurationFmt = total.FormattedDurationFor(lang)
	return preview, nil
}

func priceLine(item validator.Record, idField string, lang language.Tag) (Line, error) {
	quantity, _ := sharedvalidator.Number(item.Get(sharedvalidator.FieldJumlah))
	unitPrice, _ := sharedvalidator.Number(item.Get(sharedvalidator.FieldHargaSatuan))
	discountAmount, _ := sharedvalidator.Number(item.Get(sharedvalidator.FieldDiskon))

	price, err := paymentdomain.NewMoney(unitPrice)
	if err != nil {
		return Line{}, err
	}
	subtotal, err := price.Multiply(quantity)
	if err != nil {
		return Line{}, err
	}
	discount, err := paymentdomain.NewMoney(discountAmount)
	if err != nil {
		return Line{}, err
	}

	line := Line{
		ItemID:    fmt.Sprint(item.Get(idField)),
		Quantity:  quantity,
		UnitPrice: price,
		Subtotal:  subtotal,
		Discount:  discount,
		Net:       subtotal.Subtract(discount),
	}

	if minutes, ok := sharedvalidator.Number(item.Get(fieldDurasi)); ok {
		duration, err := domain.NewTreatmentDuration(int(minutes))
		if err != nil {
			return Line{}, err
		}
		line.Duration = &duration
		line.DurationFmt = duration.FormattedDurationFor(lang)
	}
	return line, nil
}

func withField(err error, field string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.WithField(field)
	}
	return err
}
