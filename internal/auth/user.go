package auth

import (
	"context"
	"net/http"
)

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type contextKey string

const UserContextKey contextKey = "user"

func GetUserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(UserContextKey).(*User)
	return user, ok
}

func GetUserFromRequest(r *http.Request) (*User, bool) {
	return GetUserFromContext(r.Context())
}
