package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "window-crm/pkg/errors"
)

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Body    T      `json:"body,omitempty"`
}

type ListBody[T any] struct {
	List       []T             `json:"list"`
	Pagination *PaginationMeta `json:"pagination"`
}

type PaginationMeta struct {
	TotalCount uint64 `json:"total_count"`
	TotalPages int    `json:"total_pages"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}

// SuccessOne — для возврата одного объекта
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

func SuccessList[T any](c echo.Context, message string, list []T, total uint64, page, limit int) error {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + uint64(limit) - 1) / uint64(limit))
	}

	if list == nil {
		list = make([]T, 0)
	}

	body := ListBody[T]{
		List: list,
		Pagination: &PaginationMeta{
			TotalCount: total,
			TotalPages: totalPages,
			Page:       page,
			Limit:      limit,
		},
	}

	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Status:  true,
		Message: message,
		Body:    body,
	})
}

// ErrorResponse - единая точка преобразования ошибок в HTTP-ответ.
// Для HttpError берется только пользовательское сообщение, без технических деталей.
func ErrorResponse(c echo.Context, err error) error {
	code := http.StatusInternalServerError
	msg := "Внутренняя ошибка сервера"

	var httpErr *apperrors.HttpError
	var validationErr *apperrors.ValidationError

	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		msg = httpErr.Message
	case errors.As(err, &validationErr):
		code = http.StatusUnprocessableEntity
		msg = validationErr.Message
	case errors.Is(err, apperrors.ErrNotFound):
		code = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, apperrors.ErrBadRequest):
		code = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrEmptyAuthHeader),
		errors.Is(err, apperrors.ErrInvalidAuthHeader),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired):
		code = http.StatusUnauthorized
		msg = err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		code = http.StatusForbidden
		msg = err.Error()
	}

	return c.JSON(code, Response[any]{
		Status:  false,
		Message: msg,
	})
}
