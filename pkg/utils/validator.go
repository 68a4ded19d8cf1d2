package utils

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	apperrors "window-crm/pkg/errors"
)

// EchoValidator адаптирует go-playground/validator к интерфейсу echo.Validator.
type EchoValidator struct {
	validator *validator.Validate
}

func NewValidator(v *validator.Validate) *EchoValidator {
	return &EchoValidator{validator: v}
}

func (ev *EchoValidator) Validate(i interface{}) error {
	if err := ev.validator.Struct(i); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "Неверные данные запроса", err)
	}
	return nil
}
