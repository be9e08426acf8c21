package handler

import (
	"encoding/json"

	"dentalcare_backend/internal/treatments/service"
	"dentalcare_backend/internal/treatments/transport"
	"dentalcare_backend/platform/apperr"
	"dentalcare_backend/platform/httpkit"
	"dentalcare_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const msgInvalidRequest = "invalid request"

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PreviewTreatmentItems(c *gin.Context) {
	h.preview(c, h.svc.PreviewTreatmentItems)
}

func (h *Handler) PreviewMedicalRecordItems(c *gin.Context) {
	h.preview(c, h.svc.PreviewMedicalRecordItems)
}

func (h *Handler) ValidateTreatment(c *gin.Context) {
	var record validator.Record
	if err := decodeJSON(c, &record); err != nil || record == nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}

	result := h.svc.ValidateTreatment(record)
	httpkit.OK(c, transport.ValidationResponse{IsValid: result.IsValid, Errors: result.Errors})
}

type previewFunc func(items []validator.Record, lang language.Tag) (service.Preview, error)

func (h *Handler) preview(c *gin.Context, run previewFunc) {
	var req transport.PreviewItemsRequest
	if err := decodeJSON(c, &req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}

	preview, err := run(req.Items, preferredLanguage(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toPreviewResponse(preview))
}

func decodeJSON(c *gin.Context, dst any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	return dec.Decode(dst)
}

// preferredLanguage returns the first tag of Accept-Language, Indonesian
// when the header is absent or malformed.
func preferredLanguage(c *gin.Context) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return language.Indonesian
	}
	return tags[0]
}

func toPreviewResponse(p service.Preview) transport.PreviewResponse {
	items := make([]transport.LineResponse, 0, len(p.Lines))
	for _, line := range p.Lines {
		item := transport.LineResponse{
			ItemID:          line.ItemID,
			Jumlah:          line.Quantity,
			HargaSatuan:     line.UnitPrice.Amount(),
			Subtotal:        line.Subtotal.Amount(),
			Diskon:          line.Discount.Amount(),
			Total:           line.Net.Amount(),
			DurasiFormatted: line.DurationFmt,
		}
		if line.Duration != nil {
			minutes := line.Duration.Minutes()
			item.DurasiMenit = &minutes
		}
		items = append(items, item)
	}

	return transport.PreviewResponse{
		Items:                items,
		Subtotal:             p.Subtotal.Amount(),
		DiskonTotal:          p.Discount.Amount(),
		Total:                p.Total.Amount(),
		TotalDurasiMenit:     p.TotalDuration.Minutes(),
		TotalDurasiFormatted: p.TotalDurationFmt,
	}
}
