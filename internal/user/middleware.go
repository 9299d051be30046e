package user

import (
	"context"
	"net/http"

	"github.com/makosai/backend/internal/auth"
	"github.com/makosai/backend/internal/logger"
	"github.com/makosai/backend/internal/models"
)

type dbContextKey string

const dbUserContextKey dbContextKey = "db_user"

func GetDBUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(dbUserContextKey).(*models.User)
	return user, ok
}

func UserMiddleware(userService Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := auth.GetUserFromRequest(r)
			if !ok {
				http.Error(w, "Unauthorized: User not found in context", http.StatusUnauthorized)
				return
			}

			dbUser, err := userService.GetOrCreate(
				r.Context(),
				authUser.ID,
				authUser.Email,
				authUser.FirstName,
				authUser.LastName,
			)
			if err != nil {
				logger.Log.Error("failed to get or create user",
					"user_id", authUser.ID, "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), dbUserContextKey, dbUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
