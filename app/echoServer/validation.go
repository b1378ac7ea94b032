package echoServer

import "github.com/go-playground/validator/v10"

// RequestValidator adapts go-playground/validator to echo's Validator
// interface so handlers can rely on c.Validate as well as direct
// V.Struct calls.
type RequestValidator struct {
	check *validator.Validate
}

func NewValidator(check *validator.Validate) *RequestValidator {
	return &RequestValidator{check: check}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	return rv.check.Struct(i)
}
