package middleware

import (
	"errors"
	"fmt"
	"strings"

	autherrors "go-eduhr/internal/auth/errors"
	"go-eduhr/internal/shared/contextutil"
	"go-eduhr/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const TokenTypeAccess = "access"

func abortAuth(c *gin.Context, code, message string, status int) {
	response.AbortError(c, status, code, message)
}

// AuthMiddleware validates the access token (bearer header or access_token
// cookie) and exposes user_id and role to later handlers.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortAuth(c, autherrors.ErrTokenMissing.Code, autherrors.ErrTokenMissing.Message, autherrors.ErrTokenMissing.HTTPStatus)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			errObj := autherrors.ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				errObj = autherrors.ErrTokenExpired
			}
			abortAuth(c, errObj.Code, errObj.Message, errObj.HTTPStatus)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortAuth(c, autherrors.ErrInvalidToken.Code, "Invalid token claims", autherrors.ErrInvalidToken.HTTPStatus)
			return
		}

		if typ, _ := claims["type"].(string); typ != TokenTypeAccess {
			abortAuth(c, autherrors.ErrInvalidToken.Code, "Access token required", autherrors.ErrInvalidToken.HTTPStatus)
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			abortAuth(c, autherrors.ErrInvalidToken.Code, "User ID not found in token", autherrors.ErrInvalidToken.HTTPStatus)
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role == "" {
			abortAuth(c, autherrors.ErrInvalidToken.Code, "Role not found in token", autherrors.ErrInvalidToken.HTTPStatus)
			return
		}

		c.Set("user_id", userID)
		c.Set("role", role)

		ctx := c.Request.Context()
		ctx = contextutil.WithUserID(ctx, userID)
		ctx = contextutil.WithRole(ctx, role)
		reqLogger := contextutil.GetLogger(ctx, zap.L())
		ctx = contextutil.WithLogger(ctx, reqLogger.With(zap.String("user_id", userID), zap.String("role", role)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
