package validator

import "dentalcare_backend/platform/apperr"

// Record is a decoded form or request body keyed by field name.
type Record map[string]any

// Get returns the value of field, or nil when it is absent.
func (r Record) Get(field string) any {
	if r == nil {
		return nil
	}
	return r[field]
}

// CheckFunc reports whether value is valid. record gives access to sibling fields.
type CheckFunc func(value any, record Record) bool

// Rule pairs a predicate with the message reported when it fails.
type Rule struct {
	Check   CheckFunc
	Message string
}

// Result is the outcome of validating a record against a schema.
type Result struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

// Err returns nil for a valid result and a ValidationFailed error carrying
// the errors map otherwise.
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	return apperr.New(apperr.KindValidationFailed, msgValidationFailed).
		WithField(firstField(r.Errors)).
		WithDetails(r.Errors)
}

type fieldRules struct {
	name  string
	rules []Rule
}

// Schema maps field names to ordered rules. Build it once at startup and
// share it; Validate does not mutate the schema.
type Schema struct {
	fields []fieldRules
}

func NewSchema() *Schema {
	return &Schema{}
}

// Field appends rules for name. Calling Field twice for the same name adds
// to the existing rules.
func (s *Schema) Field(name string, rules ...Rule) *Schema {
	for i := range s.fields {
		if s.fields[i].name == name {
			s.fields[i].rules = append(s.fields[i].rules, rules...)
			return s
		}
	}
	s.fields = append(s.fields, fieldRules{name: name, rules: rules})
	return s
}

// Fields returns the field names in registration order.
func (s *Schema) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		names = append(names, f.name)
	}
	return names
}

// Validate evaluates every field. Only the first failing rule of a field is reported.
func (s *Schema) Validate(record Record) Result {
	errs := make(map[string]string)
	for _, f := range s.fields {
		value := record.Get(f.name)
		for _, rule := range f.rules {
			if !rule.Check(value, record) {
				errs[f.name] = rule.Message
				break
			}
		}
	}
	return Result{IsValid: len(errs) == 0, Errors: errs}
}
