package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"log/slog"

	"photoshare/internal/api/middleware"
	"photoshare/internal/model"
	"photoshare/internal/pkg/imagestore"
	"photoshare/internal/pkg/messages"
	"photoshare/internal/repository"

	"github.com/gin-gonic/gin"
)

// handleGetMe 返回当前用户的资料（带图片数 / 评论数）。
// 每次查看自己的资料都会丢弃缓存副本，保证读到的是新鲜数据。
func (s *Server) handleGetMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": s.catalog.Get(messages.VerificationError)})
		return
	}

	if err := s.profiles.InvalidateProfile(c.Request.Context(), user.Username); err != nil {
		s.logger.Warn("invalidate profile cache failed", slog.String("error", err.Error()))
	}

	profile, err := s.users.GetProfile(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "load profile failed"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// handleEditMe 编辑自己的资料：改昵称和/或上传新头像。
// multipart 表单：new_username（可选）、file（可选，头像文件）。
func (s *Server) handleEditMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": s.catalog.Get(messages.VerificationError)})
		return
	}

	newUsername := c.PostForm("new_username")
	if newUsername != "" && newUsername != user.Username {
		taken, err := s.users.GetByUsername(c.Request.Context(), newUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "query user failed"})
			return
		}
		if taken != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": s.catalog.Get(messages.UserWithNameExists)})
			return
		}
	}

	var avatarURL string
	file, _, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		avatarURL, err = s.uploader.Upload(file, imagestore.FolderName(user.Email), imagestore.DefaultTransform())
		if err != nil {
			s.logger.Error("avatar upload failed", slog.String("email", user.Email), slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"detail": "avatar upload failed"})
			return
		}
	}

	updated, err := s.users.EditProfile(c.Request.Context(), user.Email, newUsername, avatarURL)
	if err != nil || updated == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "edit profile failed"})
		return
	}

	if err := s.profiles.InvalidateProfile(c.Request.Context(), user.Username); err != nil {
		s.logger.Warn("invalidate profile cache failed", slog.String("error", err.Error()))
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   toUserView(updated),
		"detail": s.catalog.Get(messages.ProfileEdited),
	})
}

// handleSearchUsers 按条件搜索用户。零值参数不参与过滤。
func (s *Server) handleSearchUsers(c *gin.Context) {
	f := repository.UserFilter{
		Username:      c.Query("username"),
		UsernameILike: c.Query("username_like"),
		EmailILike:    c.Query("email_like"),
		Role:          c.Query("role"),
		OrderBy:       c.Query("order_by"),
		Desc:          c.Query("desc") == "true",
	}
	if v := c.Query("confirmed"); v != "" {
		b := v == "true"
		f.Confirmed = &b
	}
	if v := c.Query("is_active"); v != "" {
		b := v == "true"
		f.IsActive = &b
	}

	users, err := s.users.Search(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "search users failed"})
		return
	}
	if len(users) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.UserNotFound)})
		return
	}

	out := make([]userView, 0, len(users))
	for i := range users {
		out = append(out, toUserView(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// handleUserProfile 按昵称查看用户资料，命中 redis 缓存时直接返回缓存副本。
func (s *Server) handleUserProfile(c *gin.Context) {
	username := c.Param("username")

	if payload, err := s.profiles.CachedProfile(c.Request.Context(), username); err == nil && payload != nil {
		c.Data(http.StatusOK, "application/json", payload)
		return
	}

	user, err := s.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "query user failed"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.UserNotFound)})
		return
	}

	profile, err := s.users.GetProfile(c.Request.Context(), user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "load profile failed"})
		return
	}

	if payload, err := json.Marshal(profile); err == nil {
		if err := s.profiles.CacheProfile(c.Request.Context(), username, payload, s.cfg.Security.ProfileCacheTTL); err != nil {
			s.logger.Warn("cache profile failed", slog.String("error", err.Error()))
		}
	}
	c.JSON(http.StatusOK, profile)
}

type manageUserRequest struct {
	Action string `json:"action" binding:"required"`
	Role   string `json:"role"`
}

// handleManageUser 管理目标用户：ban / activate / change_role。
//
// 守卫顺序固定：目标存在性 → 丢弃其缓存资料 → 自我操作短路 →
// 按 action 校验操作者权限与目标状态。权限不足返回 401。
func (s *Server) handleManageUser(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": s.catalog.Get(messages.VerificationError)})
		return
	}

	var req manageUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	username := c.Param("username")
	user, err := s.users.GetByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "query user failed"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": s.catalog.Get(messages.UserNotFound)})
		return
	}

	if err := s.profiles.InvalidateProfile(c.Request.Context(), username); err != nil {
		s.logger.Warn("invalidate profile cache failed", slog.String("error", err.Error()))
	}

	if user.ID == actor.ID {
		c.JSON(http.StatusOK, gin.H{"detail": s.catalog.Get(messages.CantBanYourself)})
		return
	}

	switch req.Action {
	case "ban":
		if actor.Role != model.RoleAdmin && actor.Role != model.RoleModerator {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": s.catalog.Get(messages.NoPermissionToBan)})
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"detail": s.catalog.Get(messages.UserAlreadyBanned)})
			return
		}
		if _, err := s.users.Ban(c.Request.Context(), user.Email); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "ban user failed"})
			return
		}
		s.logger.Info("user banned", slog.String("username", username), slog.String("by", actor.Username))
		c.JSON(http.StatusOK, gin.H{"detail": username + " " + s.catalog.Get(messages.UserHasBeenBanned)})

	case "activate":
		if actor.Role != model.RoleAdmin {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": s.catalog.Get(messages.NoPermissionToActivate)})
			return
		}
		if user.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"detail": s.catalog.Get(messages.UserAlreadyActivated)})
			return
		}
		if _, err := s.users.Activate(c.Request.Context(), user.Email); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "activate user failed"})
			return
		}
		s.logger.Info("user activated", slog.String("username", username), slog.String("by", actor.Username))
		c.JSON(http.StatusOK, gin.H{"detail": username + " " + s.catalog.Get(messages.UserHasBeenActivated)})

	case "change_role":
		if actor.Role != model.RoleAdmin {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": s.catalog.Get(messages.NoPermissionToChangeRoles)})
			return
		}
		role, ok := model.ParseRole(req.Role)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"detail": s.catalog.Get(messages.NewRoleMustBeSpecified)})
			return
		}
		if _, err := s.users.ChangeRole(c.Request.Context(), user.Email, role); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "change role failed"})
			return
		}
		s.logger.Info("user role changed",
			slog.String("username", username),
			slog.String("role", string(role)),
			slog.String("by", actor.Username),
		)
		c.JSON(http.StatusOK, gin.H{"detail": s.catalog.Get(messages.RoleChangedTo) + " " + string(role)})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": s.catalog.Get(messages.InvalidActionSpecified)})
	}
}

// parseFloatQuery 解析可选的浮点查询参数，缺省或非法返回 nil。
func parseFloatQuery(c *gin.Context, name string) *float64 {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}
