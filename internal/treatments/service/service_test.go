package service

import (
	"encoding/json"
	"strings"
	"testing"

	"dentalcare_backend/platform/apperr"
	"dentalcare_backend/platform/validator"

	"golang.org/x/text/language"
)

func decodeItems(t *testing.T, raw string) []validator.Record {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var items []validator.Record
	if err := dec.Decode(&items); err != nil {
		t.Fatal(err)
	}
	return items
}

func TestPreviewTreatmentItems(t *testing.T) {
	items := decodeItems(t, `[
		{"tindakanId": "scaling", "jumlah": 2, "hargaSatuan": 150000, "durasi": 45, "diskon": 50000},
		{"tindakanId": "tambal", "jumlah": 1, "hargaSatuan": 250000.5, "durasi": 30}
	]`)

	p, err := New().PreviewTreatmentItems(items, language.Indonesian)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(p.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(p.Lines))
	}
	first := p.Lines[0]
	if first.ItemID != "scaling" || first.Subtotal.Amount() != 300000 || first.Net.Amount() != 250000 {
		t.Fatalf("unexpected first line %+v", first)
	}
	if first.DurationFmt != "45 menit" {
		t.Fatalf("unexpected duration %q", first.DurationFmt)
	}
	if p.Subtotal.Amount() != 550000.5 || p.Discount.Amount() != 50000 || p.Total.Amount() != 500000.5 {
		t.Fatalf("unexpected totals %v %v %v", p.Subtotal, p.Discount, p.Total)
	}
	if p.TotalDuration.Minutes() != 75 || p.TotalDurationFmt != "1 jam 15 menit" {
		t.Fatalf("unexpected total duration %d %q", p.TotalDuration.Minutes(), p.TotalDurationFmt)
	}
}

func TestPreviewUsesRequestedLanguage(t *testing.T) {
	items := decodeItems(t, `[{"tindakanId": "cabut", "jumlah": 1, "hargaSatuan": 100000, "durasi": 61}]`)

	p, err := New().PreviewTreatmentItems(items, language.AmericanEnglish)
	if err != nil {
		t.Fatal(err)
	}
	if p.Lines[0].DurationFmt != "1 hour 1 minute" {
		t.Fatalf("unexpected duration %q", p.Lines[0].DurationFmt)
	}

	p, err = New().PreviewTreatmentItems(items, language.Japanese)
	if err != nil {
		t.Fatal(err)
	}
	if p.Lines[0].DurationFmt != "1 jam 1 menit" {
		t.Fatalf("expected Indonesian fallback, got %q", p.Lines[0].DurationFmt)
	}
}

func TestPreviewReportsEveryInvalidLine(t *testing.T) {
	items := decodeItems(t, `[
		{"tindakanId": "scaling", "jumlah": 1, "hargaSatuan": 100000, "diskon": 150000},
		{"jumlah": -1, "hargaSatuan": "mahal", "durasi": 1441}
	]`)

	_, err := New().PreviewTreatmentItems(items, language.Indonesian)
	if !apperr.Is(err, apperr.KindValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	details, ok := err.(*apperr.Error).Details.(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", err.(*apperr.Error).Details)
	}
	for _, key := range []string{"items[0].diskon", "items[1].tindakanId", "items[1].jumlah", "items[1].hargaSatuan", "items[1].durasi"} {
		if _, ok := details[key]; !ok {
			t.Fatalf("missing %s in %v", key, details)
		}
	}
}

func TestPreviewLimits(t *testing.T) {
	if _, err := New().PreviewTreatmentItems(nil, language.Indonesian); !apperr.Is(err, apperr.KindInvalidInput) {
		t.Fatalf("expected empty items to be rejected, got %v", err)
	}

	items := decodeItems(t, `[
		{"tindakanId": "a", "jumlah": 1, "hargaSatuan": 1, "durasi": 1000},
		{"tindakanId": "b", "jumlah": 1, "hargaSatuan": 1, "durasi": 1000}
	]`)
	if _, err := New().PreviewTreatmentItems(items, language.Indonesian); !apperr.Is(err, apperr.KindInvalidValueObject) {
		t.Fatalf("expected visit longer than a day to be rejected, got %v", err)
	}
}

func TestPreviewMedicalRecordItems(t *testing.T) {
	items := decodeItems(t, `[{"rekamMedisId": "rm-1", "jumlah": 3, "hargaSatuan": 20000, "diskon": 10000}]`)

	p, err := New().PreviewMedicalRecordItems(items, language.Indonesian)
	if err != nil {
		t.Fatal(err)
	}
	if p.Lines[0].ItemID != "rm-1" || p.Total.Amount() != 50000 || p.Lines[0].Duration != nil {
		t.Fatalf("unexpected preview %+v", p)
	}

	if _, err := New().PreviewMedicalRecordItems(decodeItems(t, `[{"jumlah": 1, "hargaSatuan": 1}]`), language.Indonesian); err == nil {
		t.Fatal("expected missing rekamMedisId to fail")
	}
}

func TestValidateTreatment(t *testing.T) {
	svc := New()

	if r := svc.ValidateTreatment(validator.Record{"namaTindakan": "Scaling", "harga": 150000.0, "durasi": 30}); !r.IsValid {
		t.Fatalf("expected valid entry, got %v", r.Errors)
	}
	r := svc.ValidateTreatment(validator.Record{"namaTindakan": "  ", "harga": 1.005})
	if r.IsValid || r.Errors["namaTindakan"] == "" || r.Errors["harga"] == "" {
		t.Fatalf("unexpected result %+v", r)
	}
}
