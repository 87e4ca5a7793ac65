package utils

import (
	"context"
)

type contextKey string

const ContextUserIDKey contextKey = "userID"
const ContextPhoneKey contextKey = "phone"

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID := ctx.Value(ContextUserIDKey)
	userIDStr, ok := userID.(string)
	return userIDStr, ok
}

func GetPhoneFromContext(ctx context.Context) (string, bool) {
	phone := ctx.Value(ContextPhoneKey)
	phoneStr, ok := phone.(string)
	return phoneStr, ok
}
