package validator

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

// RegisterCheck registers check as a struct tag. The tag sees the field value
// (nil for nil pointers) and the parent struct as a Record keyed by JSON name,
// so the same predicate serves both struct tags and schemas.
func (val *Validator) RegisterCheck(tag string, check CheckFunc, message string) error {
	return val.RegisterRule(tag, FromCheck(check), message)
}

// FromCheck adapts a CheckFunc to a go-playground validation function.
func FromCheck(check CheckFunc) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return check(plainValue(fl.Field()), structRecord(fl.Parent()))
	}
}

func plainValue(v reflect.Value) any {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

func structRecord(parent reflect.Value) Record {
	for parent.IsValid() && parent.Kind() == reflect.Ptr {
		if parent.IsNil() {
			return Record{}
		}
		parent = parent.Elem()
	}
	if !parent.IsValid() || parent.Kind() != reflect.Struct {
		return Record{}
	}

	t := parent.Type()
	record := make(Record, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := jsonFieldName(sf)
		if name == "" {
			continue
		}
		record[name] = plainValue(parent.Field(i))
	}
	return record
}
