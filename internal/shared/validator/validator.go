// Package validator holds the clinic field rules shared by the payments,
// treatments and medical-record contexts. Each rule is a pure predicate over
// one field plus, where needed, its sibling fields. Optional fields that are
// nil are valid; rules requiring a value live elsewhere.
package validator

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"time"

	paymentdomain "dentalcare_backend/internal/payments/domain"
	treatmentdomain "dentalcare_backend/internal/treatments/domain"
	"dentalcare_backend/platform/validator"

	"github.com/shopspring/decimal"
)

// MaxPrice is the largest price the clinic database column can hold.
const MaxPrice = 999999999999.99

// Sibling field names, as they appear in request bodies.
const (
	FieldJumlah            = "jumlah"
	FieldHargaSatuan       = "hargaSatuan"
	FieldDiskon            = "diskon"
	FieldTotalBiaya        = "totalBiaya"
	FieldDiskonTotal       = "diskonTotal"
	FieldJumlahBayar       = "jumlahBayar"
	FieldTanggalPembayaran = "tanggalPembayaran"
)

// Default messages.
const (
	MsgRequired          = "wajib diisi"
	MsgPrice             = "harga harus berupa angka antara 0 dan 999999999999.99 dengan maksimal 2 desimal"
	MsgDuration          = "durasi harus berupa bilangan bulat antara 0 dan 1440 menit"
	MsgDiscount          = "diskon tidak boleh negatif atau melebihi subtotal"
	MsgPaymentDiscount   = "diskon total tidak boleh negatif atau melebihi total biaya"
	MsgSufficientPayment = "jumlah bayar tidak boleh negatif"
	MsgPositiveNumber    = "harus berupa angka positif"
	MsgNotFutureDate     = "tanggal tidak boleh di masa depan"
)

// IsValidPrice: numeric, within [0, MaxPrice] and at most two decimals.
func IsValidPrice(value any, _ validator.Record) bool {
	price, ok := toNumber(value)
	if !ok || price < 0 || price > MaxPrice {
		return false
	}
	return decimalPlaces(price) <= 2
}

// IsValidDuration: absent, or a whole number of minutes within one day.
func IsValidDuration(value any, _ validator.Record) bool {
	if isNil(value) {
		return true
	}
	minutes, ok := toNumber(value)
	if !ok || minutes != math.Trunc(minutes) {
		return false
	}
	return minutes >= 0 && minutes <= treatmentdomain.MaxDurationMinutes
}

// IsValidDiscount checks a line discount against jumlah × hargaSatuan.
// Missing or non-numeric siblings count as 0.
func IsValidDiscount(value any, record validator.Record) bool {
	if isNil(value) {
		return true
	}
	discount, ok := toNumber(value)
	if !ok {
		return false
	}
	quantity, _ := toNumber(record.Get(FieldJumlah))
	unitPrice, _ := toNumber(record.Get(FieldHargaSatuan))
	if discount < 0 {
		return false
	}
	lineTotal := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice))
	return decimal.NewFromFloat(discount).LessThanOrEqual(lineTotal)
}

// IsValidPaymentDiscount checks diskonTotal against totalBiaya. Unlike the
// line discount, a present value with a non-numeric total fails.
func IsValidPaymentDiscount(value any, record validator.Record) bool {
	if isNil(value) {
		return true
	}
	discount, ok := toNumber(value)
	if !ok {
		return false
	}
	total, ok := toNumber(record.Get(FieldTotalBiaya))
	if !ok {
		return false
	}
	return discount >= 0 && discount <= total
}

// IsSufficientPayment only rejects a negative amount paid. Type mismatches
// between the paid amount and the total are left to IsPositiveNumber and
// the required rules.
func IsSufficientPayment(value any, record validator.Record) bool {
	if isNil(value) {
		return true
	}
	paid, ok := toNumber(value)
	if !ok {
		return true
	}
	if _, ok := toNumber(record.Get(FieldTotalBiaya)); !ok {
		return true
	}
	return paid >= 0
}

// IsPositiveNumber: numeric and not negative.
func IsPositiveNumber(value any, _ validator.Record) bool {
	n, ok := toNumber(value)
	return ok && n >= 0
}

// IsNotFutureDate: absent, or a date not after the current time.
func IsNotFutureDate(value any, record validator.Record) bool {
	return NotFutureDateAt(time.Now)(value, record)
}

// NotFutureDateAt returns IsNotFutureDate evaluated against the given clock.
func NotFutureDateAt(now func() time.Time) validator.CheckFunc {
	return func(value any, _ validator.Record) bool {
		if isNil(value) {
			return true
		}
		var t time.Time
		switch v := value.(type) {
		case time.Time:
			if v.IsZero() {
				return true
			}
			t = v
		case string:
			if strings.TrimSpace(v) == "" {
				return true
			}
			parsed, err := paymentdomain.ParseDate(v)
			if err != nil {
				return false
			}
			t = parsed
		default:
			return false
		}
		return !t.After(now())
	}
}

// IsPresent rejects nil values and blank strings.
func IsPresent(value any, _ validator.Record) bool {
	if isNil(value) {
		return false
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

func toNumber(value any) (float64, bool) {
	if isNil(value) {
		return 0, false
	}
	if n, ok := value.(json.Number); ok {
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	}

	rv := reflect.Indirect(reflect.ValueOf(value))
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return finite(rv.Float())
	}
	return 0, false
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// decimalPlaces counts fractional digits of the shortest decimal that
// round-trips to f, so 0.1 has one place and 100 has none.
func decimalPlaces(f float64) int {
	exp := decimal.NewFromFloat(f).Exponent()
	if exp >= 0 {
		return 0
	}
	return int(-exp)
}

// Number converts value the same way the numeric rules do. json.Number and
// every Go integer or float kind are numbers; strings are not.
func Number(value any) (float64, bool) {
	return toNumber(value)
}
