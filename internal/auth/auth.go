package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"docvault/internal/domain"
)

type principalKey struct{}

// Claims — содержимое токена, выданного сервисом аутентификации.
// Идентификатор пользователя лежит в стандартном поле Subject.
type Claims struct {
	Role   string `json:"role"`
	TownID string `json:"town_id"`
	jwt.RegisteredClaims
}

// Verifier проверяет подписанные токены и извлекает из них участника запроса
type Verifier struct {
	secret []byte
}

func NewVerifier(cfg *Config) *Verifier {
	return &Verifier{secret: []byte(cfg.JWTSecret)}
}

// VerifyToken разбирает и проверяет токен из заголовка Authorization
func (v *Verifier) VerifyToken(r *http.Request) (domain.Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return domain.Principal{}, trace.AccessDenied("no authorization header")
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return domain.Principal{}, trace.AccessDenied("authorization header is not a bearer token")
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, trace.AccessDenied("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Principal{}, trace.AccessDenied("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Principal{}, trace.AccessDenied("invalid user id in token")
	}

	townID, err := uuid.Parse(claims.TownID)
	if err != nil {
		return domain.Principal{}, trace.AccessDenied("invalid town id in token")
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return domain.Principal{}, trace.AccessDenied("invalid role in token")
	}

	return domain.Principal{
		UserID: userID,
		Role:   role,
		TownID: townID,
	}, nil
}

// Middleware проверяет токен и кладет участника запроса в контекст
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := v.VerifyToken(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFromContext достает участника запроса, положенного Middleware
func PrincipalFromContext(ctx context.Context) (domain.Principal, error) {
	principal, ok := ctx.Value(principalKey{}).(domain.Principal)
	if !ok {
		return domain.Principal{}, trace.AccessDenied("no principal in context")
	}
	return principal, nil
}
