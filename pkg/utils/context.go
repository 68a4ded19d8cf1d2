package utils

import (
	"context"

	"window-crm/pkg/contextkeys"
	apperrors "window-crm/pkg/errors"
)

// GetUserIDFromCtx извлекает ID действующего пользователя, записанный auth-middleware.
func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetUserRoleFromCtx(ctx context.Context) string {
	role, _ := ctx.Value(contextkeys.UserRoleKey).(string)
	return role
}
