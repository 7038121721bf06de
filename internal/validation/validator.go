package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// phoneRegex matches a North American number in "+1" plus ten digits form.
var phoneRegex = regexp.MustCompile(`^\+1\d{10}$`)

// Translator resolves catalog keys to user-facing messages.
type Translator interface {
	T(key string) string
}

// rule maps one validator tag on a field to its error code and catalog key.
type rule struct {
	Code       ValidationErrorCode
	MessageKey string
}

// rules is the declarative rule table. The constraints themselves live in the
// `validate` tags on ProfileFormData; this table gives every tag a message.
var rules = map[Field]map[string]rule{
	FieldFirstName: {
		"required": {ErrorRequired, "profileForm.fields.firstName.errors.required"},
		"notblank": {ErrorRequired, "profileForm.fields.firstName.errors.required"},
		"max":      {ErrorTooLong, "profileForm.fields.firstName.errors.maxLength"},
	},
	FieldLastName: {
		"required": {ErrorRequired, "profileForm.fields.lastName.errors.required"},
		"notblank": {ErrorRequired, "profileForm.fields.lastName.errors.required"},
		"max":      {ErrorTooLong, "profileForm.fields.lastName.errors.maxLength"},
	},
	FieldPhone: {
		"required": {ErrorRequired, "profileForm.fields.phone.errors.required"},
		"na_phone": {ErrorInvalidFormat, "profileForm.fields.phone.errors.invalid"},
	},
	FieldCorporationNumber: {
		"required": {ErrorRequired, "profileForm.fields.corporationNumber.errors.required"},
		"len":      {ErrorInvalidLength, "profileForm.fields.corporationNumber.errors.length"},
	},
}

// InvalidCorporationNumberKey is the generic message shown when the remote
// lookup rejects a number without a reason, or cannot be reached.
const InvalidCorporationNumberKey = "profileForm.fields.corporationNumber.errors.invalid"

// Schema evaluates the rule table against form data.
type Schema struct {
	validate   *validator.Validate
	translator Translator
}

// NewSchema builds a Schema whose messages are resolved through translator.
func NewSchema(translator Translator) *Schema {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("na_phone", ValidatePhone)
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &Schema{validate: v, translator: translator}
}

// ValidatePhone reports whether the field holds a "+1XXXXXXXXXX" number.
func ValidatePhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

// Validate runs every rule and returns one error per failing field. The first
// failing rule of a field wins; `required` is always checked first.
func (s *Schema) Validate(data ProfileFormData) FieldErrors {
	result := make(FieldErrors)

	err := s.validate.Struct(data)
	if err == nil {
		return result
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only reachable with a non-struct argument.
		return result
	}

	for _, fe := range verrs {
		field := Field(fe.Field())
		if _, seen := result[field]; seen {
			continue
		}

		r, ok := rules[field][fe.Tag()]
		if !ok {
			r = rule{Code: ErrorInvalidFormat, MessageKey: "profileForm.fields." + string(field) + ".errors.invalid"}
		}

		result[field] = ValidationError{
			Field:   field,
			Code:    r.Code,
			Message: s.translator.T(r.MessageKey),
		}
	}

	return result
}

// InvalidCorporationNumberMessage is the localized generic lookup failure.
func (s *Schema) InvalidCorporationNumberMessage() string {
	return s.translator.T(InvalidCorporationNumberKey)
}
