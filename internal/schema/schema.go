// Package schema validates scraped bill datasets against the input
// contract before they reach the pipeline. The runtime API never
// validates; only the validator CLI and the fetcher call into here.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	docNumberPattern = regexp.MustCompile(`^(HB|SB)\d+$`)
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// billRecord is the strict dataset shape. It is deliberately narrower
// than models.Bill: sponsors must be an array here even though the
// runtime coerces single strings.
type billRecord struct {
	DocNumber     string         `json:"doc_number" validate:"required,billnumber"`
	Caption       string         `json:"caption" validate:"required,notblank"`
	Sponsors      []string       `json:"sponsors" validate:"required,min=1,dive,notblank"`
	Committees    []string       `json:"committees" validate:"omitempty,dive"`
	DetailURL     string         `json:"detail_url" validate:"required,url"`
	StatusHistory []statusRecord `json:"status_history" validate:"required,min=1,dive"`
}

type statusRecord struct {
	Date   string `json:"date" validate:"required,isodate"`
	Status string `json:"status" validate:"required,notblank"`
}

// Report is the outcome of validating one dataset.
type Report struct {
	Errors       []string
	TotalBills   int
	ValidBills   int
	InvalidBills int
}

// Valid reports whether the whole dataset passed.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "billnumber", func(fl validator.FieldLevel) bool {
		return docNumberPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		return isoDatePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

// ValidateData validates a raw dataset document and reports every
// violation with the offending array index.
func ValidateData(data []byte) Report {
	var report Report

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			report.Errors = append(report.Errors, "root element must be an array of bill objects")
		} else {
			report.Errors = append(report.Errors, fmt.Sprintf("invalid JSON: %v", err))
		}
		return report
	}

	report.TotalBills = len(records)
	for i, raw := range records {
		errs := validateBill(raw, i)
		if len(errs) == 0 {
			report.ValidBills++
		} else {
			report.InvalidBills++
			report.Errors = append(report.Errors, errs...)
		}
	}
	return report
}

func validateBill(raw json.RawMessage, index int) []string {
	var record billRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			want := "a " + typeErr.Type.Kind().String()
			if typeErr.Type.Kind() == reflect.Slice {
				want = "an array"
			}
			return []string{fmt.Sprintf("[Bill %d] %s must be %s", index, fieldName(typeErr), want)}
		}
		return []string{fmt.Sprintf("[Bill %d] not a valid bill object: %v", index, err)}
	}

	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{fmt.Sprintf("[Bill %d] %v", index, err)}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, describe(fe, index, record))
	}
	return out
}

func describe(fe validator.FieldError, index int, record billRecord) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("[Bill %d] missing required field: %q", index, field)
	case "billnumber":
		return fmt.Sprintf("[Bill %d] invalid doc_number format: %q (expected \"HB123\" or \"SB456\")", index, record.DocNumber)
	case "isodate":
		return fmt.Sprintf("[Bill %d] %s must be ISO 8601 format (YYYY-MM-DD), got: %q", index, field, fe.Value())
	case "url":
		return fmt.Sprintf("[Bill %d] detail_url is not a valid URL: %q", index, record.DetailURL)
	case "min":
		return fmt.Sprintf("[Bill %d] %s array cannot be empty", index, field)
	case "notblank":
		return fmt.Sprintf("[Bill %d] %s cannot be empty", index, field)
	default:
		return fmt.Sprintf("[Bill %d] %s failed %s validation", index, field, fe.Tag())
	}
}

// fieldPath strips the struct name from the error namespace, leaving the
// json path ("status_history[0].date").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldName(typeErr *json.UnmarshalTypeError) string {
	if typeErr.Field != "" {
		return typeErr.Field
	}
	return "bill"
}
