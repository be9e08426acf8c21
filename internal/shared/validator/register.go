package validator

import (
	"time"

	"dentalcare_backend/platform/validator"
)

// Struct tags registered by Register.
const (
	TagPrice             = "price"
	TagDuration          = "duration"
	TagDiscount          = "discount"
	TagPaymentDiscount   = "paymentdiscount"
	TagSufficientPayment = "sufficientpayment"
	TagPositiveNumber    = "positivenumber"
	TagNotFutureDate     = "notfuturedate"
)

type tagRule struct {
	tag     string
	check   validator.CheckFunc
	message string
}

func tagRules(now func() time.Time) []tagRule {
	return []tagRule{
		{TagPrice, IsValidPrice, MsgPrice},
		{TagDuration, IsValidDuration, MsgDuration},
		{TagDiscount, IsValidDiscount, MsgDiscount},
		{TagPaymentDiscount, IsValidPaymentDiscount, MsgPaymentDiscount},
		{TagSufficientPayment, IsSufficientPayment, MsgSufficientPayment},
		{TagPositiveNumber, IsPositiveNumber, MsgPositiveNumber},
		{TagNotFutureDate, NotFutureDateAt(now), MsgNotFutureDate},
	}
}

// Register installs the clinic rules as struct tags on val.
func Register(val *validator.Validator) error {
	return RegisterWithClock(val, time.Now)
}

// RegisterWithClock is Register with an explicit clock for the date rule.
func RegisterWithClock(val *validator.Validator, now func() time.Time) error {
	for _, r := range tagRules(now) {
		if err := val.RegisterCheck(r.tag, r.check, r.message); err != nil {
			return err
		}
	}
	return nil
}
