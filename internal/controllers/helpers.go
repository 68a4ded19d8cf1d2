package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "window-crm/pkg/errors"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func parseID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный ID", err)
	}
	return id, nil
}

// parsePagination читает page/limit из query и возвращает limit/offset для выборки.
func parsePagination(ctx echo.Context) (page, limit int, limitU, offsetU uint64) {
	page, _ = strconv.Atoi(ctx.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(ctx.QueryParam("limit"))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit, uint64(limit), uint64((page - 1) * limit)
}
