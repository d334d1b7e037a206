// Package validation holds the explicit schema for the account entity and the
// password-strength policy. Every constraint is a named rule so callers and
// tests can refer to it directly.
package validation

import (
	"github.com/Sinanalungal/Image-Generator-Backend/shared/errs"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/models"
	"github.com/Sinanalungal/Image-Generator-Backend/shared/utils"
	"github.com/go-playground/validator/v10"
)

const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPhoneNumber = "phone_number"
	FieldPassword    = "password"
	FieldProfile     = "profile"
)

const (
	MsgEmailTaken = "user account with this email already exists."
	MsgPhoneTaken = "user account with this phone number already exists."
)

// Rule is a single named constraint expressed as a validator tag.
type Rule struct {
	Name    string
	Tag     string
	Message string
}

var (
	Required       = Rule{Name: "required", Tag: "required", Message: "This field is required."}
	UsernameLength = Rule{Name: "username_length", Tag: "min=3,max=100", Message: "Username must be between 3 and 100 characters."}
	EmailFormat    = Rule{Name: "email_format", Tag: "email", Message: "Enter a valid email address."}
	EmailLength    = Rule{Name: "email_length", Tag: "max=100", Message: "Ensure this field has no more than 100 characters."}
	PhoneLength    = Rule{Name: "phone_length", Tag: "len=10", Message: "Phone number must be exactly 10 characters."}
)

// AccountSchema validates account fields before anything reaches the
// persistence layer. Uniqueness is checked by the store, not here.
type AccountSchema struct {
	validate *validator.Validate
	rules    map[string][]Rule
}

func NewAccountSchema() *AccountSchema {
	return &AccountSchema{
		validate: validator.New(),
		rules: map[string][]Rule{
			FieldUsername:    {UsernameLength},
			FieldEmail:       {EmailFormat, EmailLength},
			FieldPhoneNumber: {PhoneLength},
		},
	}
}

// Check runs the field's rules against value and returns the failing messages.
func (s *AccountSchema) Check(field, value string) []string {
	var msgs []string
	for _, r := range s.rules[field] {
		if !s.Satisfies(r, value) {
			msgs = append(msgs, r.Message)
		}
	}
	return msgs
}

// Satisfies reports whether value passes rule r.
func (s *AccountSchema) Satisfies(r Rule, value string) bool {
	return s.validate.Var(value, r.Tag) == nil
}

// ValidateNew checks a full registration payload. Email must already be
// normalized.
func (s *AccountSchema) ValidateNew(username, email, phoneNumber string) *errs.ValidationError {
	v := errs.NewValidationError()
	fields := []struct{ name, value string }{
		{FieldUsername, username},
		{FieldEmail, email},
		{FieldPhoneNumber, phoneNumber},
	}
	for _, f := range fields {
		if utils.IsBlank(f.value) {
			v.Add(f.name, Required.Message)
			continue
		}
		for _, msg := range s.Check(f.name, f.value) {
			v.Add(f.name, msg)
		}
	}
	return v
}

// ValidatePatch checks only the fields a sparse patch actually supplies.
func (s *AccountSchema) ValidatePatch(p models.AccountPatch) *errs.ValidationError {
	v := errs.NewValidationError()
	if utils.Present(p.Username) {
		for _, msg := range s.Check(FieldUsername, *p.Username) {
			v.Add(FieldUsername, msg)
		}
	}
	if utils.Present(p.Email) {
		for _, msg := range s.Check(FieldEmail, utils.NormalizeEmail(*p.Email)) {
			v.Add(FieldEmail, msg)
		}
	}
	if utils.Present(p.PhoneNumber) {
		for _, msg := range s.Check(FieldPhoneNumber, *p.PhoneNumber) {
			v.Add(FieldPhoneNumber, msg)
		}
	}
	return v
}
