package transport

// PreviewPaymentRequest describes a payment about to be recorded against a bill.
type PreviewPaymentRequest struct {
	TotalBiaya        *float64 `json:"totalBiaya" validate:"required,price"`
	DiskonTotal       *float64 `json:"diskonTotal" validate:"omitempty,paymentdiscount"`
	JumlahBayar       *float64 `json:"jumlahBayar" validate:"required,positivenumber,sufficientpayment"`
	TanggalPembayaran string   `json:"tanggalPembayaran" validate:"omitempty,notfuturedate"`
	NomorInvoice      string   `json:"nomorInvoice" validate:"omitempty,max=20"`
	UrutanInvoice     int      `json:"urutanInvoice" validate:"omitempty,min=1,max=9999"`
}

type PaymentPreviewResponse struct {
	NomorInvoice      string  `json:"nomorInvoice"`
	TanggalPembayaran string  `json:"tanggalPembayaran"`
	TotalBiaya        float64 `json:"totalBiaya"`
	DiskonTotal       float64 `json:"diskonTotal"`
	TotalTagihan      float64 `json:"totalTagihan"`
	JumlahBayar       float64 `json:"jumlahBayar"`
	Kembalian         float64 `json:"kembalian"`
	SisaTagihan       float64 `json:"sisaTagihan"`
	Status            string  `json:"status"`
}

// ValidationResponse is the outcome of checking a loosely typed form.
type ValidationResponse struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}
