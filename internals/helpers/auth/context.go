package auth

import (
	"context"
	"strings"
)

type ctxKey string

const (
	bearerKey   ctxKey = "bearer_token"
	schoolIDKey ctxKey = "school_id"
	userIDKey   ctxKey = "user_id"
)

// WithBearer menyimpan token pemanggil agar bisa diteruskan ke backend.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey, strings.TrimSpace(token))
}

func BearerFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(bearerKey).(string)
	return v
}

func WithSchoolID(ctx context.Context, schoolID string) context.Context {
	return context.WithValue(ctx, schoolIDKey, strings.TrimSpace(schoolID))
}

func SchoolIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(schoolIDKey).(string)
	return v
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, strings.TrimSpace(userID))
}

func UserIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// OwnerFrom: kunci kepemilikan sesi halaman (sekolah + user).
func OwnerFrom(ctx context.Context) string {
	return SchoolIDFrom(ctx) + ":" + UserIDFrom(ctx)
}
