package middleware

import (
	"context"
	"net/http"
	"strings"

	"photoshare/internal/model"
	"photoshare/internal/pkg/messages"

	"github.com/gin-gonic/gin"
)

// Context keys populated by Auth for downstream handlers.
const (
	CtxUser        = "currentUser"
	CtxUserID      = "userID"
	CtxRole        = "role"
	CtxAccessToken = "accessToken"
)

// AccessTokenParser 校验访问令牌并返回其 subject（邮箱）。
type AccessTokenParser interface {
	ParseAccessToken(token string) (string, error)
}

// RevocationChecker 查询令牌是否已被吊销（redis 侧）。
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// LedgerChecker 查询令牌是否在数据库吊销台账内。
type LedgerChecker interface {
	IsInvalidated(ctx context.Context, token string) (bool, error)
}

// UserLoader 按邮箱加载用户。
type UserLoader interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Auth 校验 Bearer 访问令牌，拒绝已吊销令牌与被封禁用户，
// 并把当前用户写入上下文。
func Auth(parser AccessTokenParser, revoked RevocationChecker, ledger LedgerChecker, users UserLoader, catalog *messages.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": catalog.Get(messages.TokenNotProvided)})
			c.Abort()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": catalog.Get(messages.TokenNotProvided)})
			c.Abort()
			return
		}
		tokenStr := parts[1]

		email, err := parser.ParseAccessToken(tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": catalog.Get(messages.VerificationError)})
			c.Abort()
			return
		}

		// 吊销检查失败一律按已吊销处理（fail closed）
		if isRevoked, err := revoked.IsRevoked(c.Request.Context(), tokenStr); err != nil || isRevoked {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": catalog.Get(messages.TokenRevoked)})
			c.Abort()
			return
		}
		if ledger != nil {
			if invalidated, err := ledger.IsInvalidated(c.Request.Context(), tokenStr); err != nil || invalidated {
				c.JSON(http.StatusUnauthorized, gin.H{"detail": catalog.Get(messages.TokenRevoked)})
				c.Abort()
				return
			}
		}

		user, err := users.GetByEmail(c.Request.Context(), email)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": catalog.Get(messages.VerificationError)})
			c.Abort()
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"detail": catalog.Get(messages.UserIsOnBanList)})
			c.Abort()
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxUserID, user.ID)
		c.Set(CtxRole, string(user.Role))
		c.Set(CtxAccessToken, tokenStr)
		c.Next()
	}
}

// CurrentUser 取出 Auth 放入上下文的用户。
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
