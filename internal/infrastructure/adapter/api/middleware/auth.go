package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	domainerr "github.com/quicrefill/customer-service/internal/domain/error"
	coreport "github.com/quicrefill/customer-service/internal/domain/port/core"
	"github.com/quicrefill/customer-service/internal/infrastructure/adapter/api/dto"
)

// principalKey is the gin context key the authenticated principal lives under
const principalKey = "auth_principal"

// Principal is the authenticated caller extracted from the bearer token
type Principal struct {
	UserID uint64
	Email  string
}

// Claims is the JWT payload this service issues and accepts
type Claims struct {
	UserID uint64 `json:"userId"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates the Authorization bearer token and stores the principal in
// the request context. Requests without a valid token are rejected with 401.
func Auth(secret string, logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.Warn("Rejected bearer token", map[string]any{
				"path":      c.Request.URL.Path,
				"client_ip": c.ClientIP(),
			})
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		if claims.UserID == 0 {
			abortUnauthorized(c, "Token carries no user identity")
			return
		}

		c.Set(principalKey, Principal{
			UserID: claims.UserID,
			Email:  claims.Email,
		})
		c.Next()
	}
}

// GetPrincipal returns the authenticated principal for the request
func GetPrincipal(c *gin.Context) (Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return Principal{}, false
	}
	principal, ok := value.(Principal)
	return principal, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(domainerr.ErrUnauthorized),
		Message: message,
	})
}
