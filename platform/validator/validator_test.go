package validator

import (
	"reflect"
	"testing"

	"dentalcare_backend/platform/apperr"

	"github.com/go-playground/validator/v10"
)

type sampleRequest struct {
	Name  string   `json:"nama" validate:"required"`
	Score *float64 `json:"skor" validate:"nonnegative"`
}

func nonNegative(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.IsValid() || (field.Kind() == reflect.Ptr && field.IsNil()) {
		return true
	}
	return reflect.Indirect(field).Float() >= 0
}

func newSampleValidator(t *testing.T) *Validator {
	t.Helper()
	val := New()
	if err := val.RegisterRule("nonnegative", nonNegative, "tidak boleh negatif"); err != nil {
		t.Fatalf("register rule: %v", err)
	}
	return val
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	val := newSampleValidator(t)
	negative := -1.0

	err := val.ValidateStruct(sampleRequest{Score: &negative})
	if !apperr.Is(err, apperr.KindValidationFailed) {
		t.Fatalf("expected ValidationFailed, got %v", err)
	}

	details, ok := err.(*apperr.Error).Details.(map[string]string)
	if !ok {
		t.Fatalf("expected map details, got %T", err.(*apperr.Error).Details)
	}
	if details["nama"] != "wajib diisi" {
		t.Fatalf("expected required message for nama, got %q", details["nama"])
	}
	if details["skor"] != "tidak boleh negatif" {
		t.Fatalf("expected registered message for skor, got %q", details["skor"])
	}
	if err.(*apperr.Error).Field != "nama" {
		t.Fatalf("expected first field nama, got %q", err.(*apperr.Error).Field)
	}
}

func TestValidateStructRunsRulesForNilPointers(t *testing.T) {
	val := newSampleValidator(t)

	if err := val.ValidateStruct(sampleRequest{Name: "Budi"}); err != nil {
		t.Fatalf("expected nil score to be accepted by the rule, got %v", err)
	}
}

func TestSchemaValidate(t *testing.T) {
	notEmpty := Rule{
		Check: func(value any, _ Record) bool {
			s, ok := value.(string)
			return ok && s != ""
		},
		Message: "wajib diisi",
	}
	lessThanMax := Rule{
		Check: func(value any, record Record) bool {
			v, _ := value.(float64)
			max, _ := record.Get("max").(float64)
			return v <= max
		},
		Message: "melebihi batas",
	}

	schema := NewSchema().
		Field("nama", notEmpty).
		Field("nilai", lessThanMax)

	result := schema.Validate(Record{"nama": "", "nilai": 11.0, "max": 10.0})
	if result.IsValid {
		t.Fatal("expected invalid result")
	}
	if result.Errors["nama"] != "wajib diisi" || result.Errors["nilai"] != "melebihi batas" {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if !apperr.Is(result.Err(), apperr.KindValidationFailed) {
		t.Fatalf("expected ValidationFailed, got %v", result.Err())
	}

	result = schema.Validate(Record{"nama": "Siti", "nilai": 5.0, "max": 10.0})
	if !result.IsValid || len(result.Errors) != 0 || result.Err() != nil {
		t.Fatalf("expected valid result, got %+v", result)
	}
}

func TestSchemaReportsFirstFailingRulePerField(t *testing.T) {
	always := func(ok bool, msg string) Rule {
		return Rule{Check: func(any, Record) bool { return ok }, Message: msg}
	}

	schema := NewSchema().Field("harga", always(true, "a"), always(false, "b"), always(false, "c"))
	schema.Field("harga", always(false, "d"))

	result := schema.Validate(Record{})
	if result.Errors["harga"] != "b" {
		t.Fatalf("expected first failing message b, got %q", result.Errors["harga"])
	}
	if got := schema.Fields(); len(got) != 1 || got[0] != "harga" {
		t.Fatalf("unexpected fields %v", got)
	}
}
