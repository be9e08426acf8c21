package transport

import "dentalcare_backend/platform/validator"

// PreviewItemsRequest carries raw item records. Items are decoded without
// coercion so the field rules see what the client sent.
type PreviewItemsRequest struct {
	Items []validator.Record `json:"items"`
}

type LineResponse struct {
	ItemID          string  `json:"itemId"`
	Jumlah          float64 `json:"jumlah"`
	HargaSatuan     float64 `json:"hargaSatuan"`
	Subtotal        float64 `json:"subtotal"`
	Diskon          float64 `json:"diskon"`
	Total           float64 `json:"total"`
	DurasiMenit     *int    `json:"durasiMenit,omitempty"`
	DurasiFormatted string  `json:"durasiFormatted,omitempty"`
}

type PreviewResponse struct {
	Items                []LineResponse `json:"items"`
	Subtotal             float64        `json:"subtotal"`
	DiskonTotal          float64        `json:"diskonTotal"`
	Total                float64        `json:"total"`
	TotalDurasiMenit     int            `json:"totalDurasiMenit"`
	TotalDurasiFormatted string         `json:"totalDurasiFormatted"`
}

type ValidationResponse struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}
