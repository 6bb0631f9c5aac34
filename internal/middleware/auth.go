package middleware

import (
	"context"
	"net/http"
	"strings"

	"taskmanager/internal/logger"
	"taskmanager/internal/models/user"

	"go.uber.org/zap"
)

const ownerKey contextKey = "owner"

// OwnerResolver превращает bearer-токен во владельца запроса.
type OwnerResolver interface {
	Resolve(ctx context.Context, token string) (*user.User, error)
}

// Authenticate разбирает заголовок Authorization один раз на запрос и
// кладёт владельца в контекст. Дальше хендлеры работают с готовым
// владельцем, токен больше нигде не разбирается.
func Authenticate(resolver OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthenticated(w, r, "отсутствует заголовок Authorization")
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				unauthenticated(w, r, "ожидается схема Bearer")
				return
			}

			owner, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				logger.Warn("HTTP: Токен не прошёл проверку",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err))
				unauthenticated(w, r, "недействительный токен")
				return
			}

			ctx := context.WithValue(r.Context(), ownerKey, owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOwner возвращает владельца, положенного Authenticate.
func GetOwner(ctx context.Context) (*user.User, bool) {
	owner, ok := ctx.Value(ownerKey).(*user.User)
	return owner, ok
}

func unauthenticated(w http.ResponseWriter, r *http.Request, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "UNAUTHENTICATED", "message": "` + reason + `"}`))
}
