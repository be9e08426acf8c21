package handler

import (
	"encoding/json"

	"dentalcare_backend/internal/payments/service"
	"dentalcare_backend/internal/payments/transport"
	"dentalcare_backend/platform/apperr"
	"dentalcare_backend/platform/httpkit"
	"dentalcare_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request"

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Preview computes the settlement of a payment without recording it.
func (h *Handler) Preview(c *gin.Context) {
	var req transport.PreviewPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.ValidateStruct(req); httpkit.HandleError(c, err) {
		return
	}

	preview, err := h.svc.Preview(service.PreviewInput{
		TotalBiaya:        deref(req.TotalBiaya),
		DiskonTotal:       deref(req.DiskonTotal),
		JumlahBayar:       deref(req.JumlahBayar),
		TanggalPembayaran: req.TanggalPembayaran,
		NomorInvoice:      req.NomorInvoice,
		UrutanInvoice:     req.UrutanInvoice,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.PaymentPreviewResponse{
		NomorInvoice:      preview.Invoice.String(),
		TanggalPembayaran: preview.PaidAt.String(),
		TotalBiaya:        preview.Bill.Total().Amount(),
		DiskonTotal:       preview.Bill.Discount().Amount(),
		TotalTagihan:      preview.AmountDue.Amount(),
		JumlahBayar:       preview.Bill.Paid().Amount(),
		Kembalian:         preview.Change.Amount(),
		SisaTagihan:       preview.Outstanding.Amount(),
		Status:            string(preview.Status),
	})
}

// ValidateForm reports every failing field of a raw payment form. The form
// is decoded without coercion so strings stay strings.
func (h *Handler) ValidateForm(c *gin.Context) {
	var record validator.Record
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&record); err != nil || record == nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}

	result := h.svc.ValidateForm(record)
	httpkit.OK(c, transport.ValidationResponse{IsValid: result.IsValid, Errors: result.Errors})
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
