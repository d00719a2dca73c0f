package middleware

import (
	"net/http"

	"photoshare/internal/model"
	"photoshare/internal/pkg/messages"

	"github.com/gin-gonic/gin"
)

// RequireRoles 在 Auth 之后执行的角色门控：调用者角色不在集合内则 403。
// 三个固定的角色集合在路由注册处各声明一次。
func RequireRoles(catalog *messages.Catalog, roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := model.Role(c.GetString(CtxRole))
		if !allowed[role] {
			c.JSON(http.StatusForbidden, gin.H{"detail": catalog.Get(messages.OperationsForbidden)})
			c.Abort()
			return
		}
		c.Next()
	}
}
