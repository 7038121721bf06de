package validation

import (
	"sort"
	"strings"
)

// Field identifies one input of the onboarding form. Values match the JSON
// names used on the wire and the message catalog keys.
type Field string

const (
	FieldFirstName         Field = "firstName"
	FieldLastName          Field = "lastName"
	FieldPhone             Field = "phone"
	FieldCorporationNumber Field = "corporationNumber"
)

// Fields lists every form field in display order.
var Fields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldPhone,
	FieldCorporationNumber,
}

// ProfileFormData is the form state submitted by the user.
type ProfileFormData struct {
	FirstName         string `json:"firstName" validate:"required,notblank,max=50"`
	LastName          string `json:"lastName" validate:"required,notblank,max=50"`
	Phone             string `json:"phone" validate:"required,na_phone"`
	CorporationNumber string `json:"corporationNumber" validate:"required,len=9"`
}

// Get returns the value held for field.
func (d ProfileFormData) Get(field Field) string {
	switch field {
	case FieldFirstName:
		return d.FirstName
	case FieldLastName:
		return d.LastName
	case FieldPhone:
		return d.Phone
	case FieldCorporationNumber:
		return d.CorporationNumber
	}
	return ""
}

// Set stores value for field. Unknown fields are ignored.
func (d *ProfileFormData) Set(field Field, value string) {
	switch field {
	case FieldFirstName:
		d.FirstName = value
	case FieldLastName:
		d.LastName = value
	case FieldPhone:
		d.Phone = value
	case FieldCorporationNumber:
		d.CorporationNumber = value
	}
}

// ValidationErrorCode represents specific validation error types
type ValidationErrorCode int

const (
	ErrorRequired ValidationErrorCode = iota
	ErrorTooLong
	ErrorInvalidFormat
	ErrorInvalidLength
)

// ValidationError represents a specific validation error
type ValidationError struct {
	Field   Field
	Code    ValidationErrorCode
	Message string
}

func (e ValidationError) Error() string {
	return string(e.Field) + ": " + e.Message
}

// FieldErrors holds at most one sync error per field.
type FieldErrors map[Field]ValidationError

// Message returns the user-facing message for field, or "" when it passed.
func (fe FieldErrors) Message(field Field) string {
	return fe[field].Message
}

func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

// Err returns nil when no field failed, otherwise an error listing every
// failure in field order.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}

	errs := make(ValidationErrors, 0, len(fe))
	for _, e := range fe {
		errs = append(errs, e)
	}
	sort.Slice(errs, func(i, j int) bool {
		return fieldIndex(errs[i].Field) < fieldIndex(errs[j].Field)
	})
	return errs
}

// ValidationErrors is the error form of FieldErrors.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// ValidationResult is the outcome reported by the remote corporation-number
// lookup. Message is advisory and only shown when Valid is false.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func fieldIndex(field Field) int {
	for i, f := range Fields {
		if f == field {
			return i
		}
	}
	return len(Fields)
}
