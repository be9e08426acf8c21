package validator

import "dentalcare_backend/platform/validator"

var (
	required          = validator.Rule{Check: IsPresent, Message: MsgRequired}
	price             = validator.Rule{Check: IsValidPrice, Message: MsgPrice}
	duration          = validator.Rule{Check: IsValidDuration, Message: MsgDuration}
	discount          = validator.Rule{Check: IsValidDiscount, Message: MsgDiscount}
	paymentDiscount   = validator.Rule{Check: IsValidPaymentDiscount, Message: MsgPaymentDiscount}
	sufficientPayment = validator.Rule{Check: IsSufficientPayment, Message: MsgSufficientPayment}
	positiveNumber    = validator.Rule{Check: IsPositiveNumber, Message: MsgPositiveNumber}
	notFutureDate     = validator.Rule{Check: IsNotFutureDate, Message: MsgNotFutureDate}
)

// TreatmentSchema validates an entry of the treatment catalogue.
var TreatmentSchema = validator.NewSchema().
	Field("namaTindakan", required).
	Field("harga", required, price).
	Field("durasi", duration)

// TreatmentItemSchema validates a treatment line on a visit: quantity, unit
// price, optional duration and a discount bounded by the line subtotal.
var TreatmentItemSchema = validator.NewSchema().
	Field("tindakanId", required).
	Field(FieldJumlah, required, positiveNumber).
	Field(FieldHargaSatuan, required, price).
	Field("durasi", duration).
	Field(FieldDiskon, discount)

// MedicalRecordItemSchema validates a billed line inside a medical record.
// It shares the treatment line discount semantics.
var MedicalRecordItemSchema = validator.NewSchema().
	Field("rekamMedisId", required).
	Field(FieldJumlah, required, positiveNumber).
	Field(FieldHargaSatuan, required, price).
	Field(FieldDiskon, discount)

// PaymentSchema validates a payment against its bill.
var PaymentSchema = validator.NewSchema().
	Field(FieldTotalBiaya, required, price).
	Field(FieldDiskonTotal, paymentDiscount).
	Field(FieldJumlahBayar, required, positiveNumber, sufficientPayment).
	Field(FieldTanggalPembayaran, notFutureDate)
