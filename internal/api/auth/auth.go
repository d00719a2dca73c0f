package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"photoshare/internal/api/middleware"
	"photoshare/internal/model"
	"photoshare/internal/pkg/messages"
	"photoshare/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// UserStore 认证流程需要的用户操作子集。
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdateRefreshToken(ctx context.Context, userID uint, token string) error
	ConfirmEmail(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, userID uint, passwordHash string) error
}

// TokenService 签发与解码三类令牌。
type TokenService interface {
	CreateAccessToken(email string) (string, error)
	CreateRefreshToken(email string) (string, error)
	CreateEmailToken(email string) (string, error)
	DecodeRefreshToken(token string) (string, error)
	EmailFromToken(token string) (string, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// Revoker 将令牌标记为已吊销（redis 侧，按令牌剩余寿命设置 TTL）。
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// Ledger 数据库侧吊销台账。
type Ledger interface {
	Invalidate(ctx context.Context, token string, pruneBefore time.Time) error
}

// Mailer 发送确认 / 重置邮件。
type Mailer interface {
	SendConfirmation(toEmail, username, token string) error
	SendPasswordReset(toEmail, username, token string) error
}

// PasswordHasher 密码哈希与校验。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// Handler 提供注册、登录、令牌与邮箱流程接口。
type Handler struct {
	users    UserStore
	tokens   TokenService
	revoker  Revoker
	ledger   Ledger
	mailer   Mailer
	hasher   PasswordHasher
	catalog  *messages.Catalog
	logger   *slog.Logger
}

// NewHandler 创建 Auth Handler。
func NewHandler(users UserStore, tokens TokenService, revoker Revoker, ledger Ledger, mailer Mailer, hasher PasswordHasher, catalog *messages.Catalog, logger *slog.Logger) *Handler {
	return &Handler{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		ledger:  ledger,
		mailer:  mailer,
		hasher:  hasher,
		catalog: catalog,
		logger:  logger,
	}
}

type signupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type userResponse struct {
	ID       uint       `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	Avatar   string     `json:"avatar"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Avatar:   u.Avatar,
	}
}

// Signup 创建新用户并发送确认邮件。
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	existing, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "query user failed"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"detail": h.catalog.Get(messages.UserWithUsernameExists)})
		return
	}

	existing, err = h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "query user failed"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"detail": h.catalog.Get(messages.AccountAlreadyExists)})
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "hash password failed"})
		return
	}

	user := model.User{
		Username: req.Username,
		Email:    email,
		Password: hash,
		IsActive: true,
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		h.logger.Error("create user failed", slog.String("email", email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "create user failed"})
		return
	}

	h.sendConfirmationAsync(user.Email, user.Username)
	metrics.SignupsTotal.Inc()

	h.logger.Info("user registered", slog.String("email", email), slog.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, gin.H{
		"user":   toUserResponse(&user),
		"detail": h.catalog.Get(messages.UserSuccessfullyCreated),
	})
}

// Login 校验用户并返回访问 / 刷新令牌对。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "query user failed"})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": h.catalog.Get(messages.InvalidEmail)})
		return
	}
	if !user.Confirmed {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": h.catalog.Get(messages.EmailNotConfirmed)})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": h.catalog.Get(messages.UserIsOnBanList)})
		return
	}
	if !h.hasher.Verify(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": h.catalog.Get(messages.InvalidPassword)})
		return
	}

	pair, err := h.issueTokenPair(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("issue tokens failed", slog.String("email", email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "sign token failed"})
		return
	}

	metrics.LoginsTotal.Inc()
	h.logger.Info("user logged in", slog.String("email", email), slog.String("role", string(user.Role)))
	c.JSON(http.StatusOK, pair)
}

// Logout 吊销当前访问令牌与用户存储的刷新令牌。
func (h *Handler) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	accessToken := c.GetString(middleware.CtxAccessToken)
	if user == nil || accessToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": h.catalog.Get(messages.TokenNotProvided)})
		return
	}

	ctx := c.Request.Context()
	if err := h.revoker.Revoke(ctx, accessToken, h.tokens.AccessTTL()); err != nil {
		h.logger.Warn("revoke access token failed", slog.String("error", err.Error()))
	}
	if user.RefreshToken != "" {
		if err := h.revoker.Revoke(ctx, user.RefreshToken, h.tokens.RefreshTTL()); err != nil {
			h.logger.Warn("revoke refresh token failed", slog.String("error", err.Error()))
		}
	}

	// 数据库台账兜底，插入后顺手清理早于刷新 TTL 的旧行
	pruneBefore := time.Now().Add(-h.tokens.RefreshTTL())
	if err := h.ledger.Invalidate(ctx, accessToken, pruneBefore); err != nil {
		h.logger.Warn("ledger invalidate failed", slog.String("error", err.Error()))
	}
	if user.RefreshToken != "" {
		if err := h.ledger.Invalidate(ctx, user.RefreshToken, pruneBefore); err != nil {
			h.logger.Warn("ledger invalidate failed", slog.String("error", err.Error()))
		}
	}

	metrics.TokensRevokedTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"message": h.catalog.Get(messages.TokenRevoked)})
}

// Refresh 用刷新令牌换取新令牌对。
//
// 携带的令牌与用户记录里存储的不一致视为被盗用：清空存储值并拒绝。
func (h *Handler) Refresh(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": h.catalog.Get(messages.TokenNotProvided)})
		return
	}

	email, err := h.tokens.DecodeRefreshToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": h.catalog.Get(messages.InvalidRefreshToken)})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "query user failed"})
		return
	}
	if user != nil && user.RefreshToken != token {
		if err := h.users.UpdateRefreshToken(c.Request.Context(), user.ID, ""); err != nil {
			h.logger.Warn("clear refresh token failed", slog.String("error", err.Error()))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"detail": h.catalog.Get(messages.InvalidRefreshToken)})
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": h.catalog.Get(messages.InvalidRefreshToken)})
		return
	}

	pair, err := h.issueTokenPair(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("issue tokens failed", slog.String("email", email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "sign token failed"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

// ConfirmedEmail 通过邮件令牌确认邮箱。重复确认是幂等操作。
func (h *Handler) ConfirmedEmail(c *gin.Context) {
	token := c.Param("token")
	email, err := h.tokens.EmailFromToken(token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": h.catalog.Get(messages.VerificationError)})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "query user failed"})
		return
	}
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": h.catalog.Get(messages.VerificationError)})
		return
	}
	if user.Confirmed {
		c.JSON(http.StatusOK, gin.H{"message": h.catalog.Get(messages.EmailAlreadyConfirmed)})
		return
	}

	if err := h.users.ConfirmEmail(c.Request.Context(), email); err != nil {
		h.logger.Error("confirm email failed", slog.String("email", email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "confirm email failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.catalog.Get(messages.EmailConfirmed)})
}

// RequestEmail 重新发送确认邮件。
func (h *Handler) RequestEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "query user failed"})
		return
	}
	if user != nil && !user.Confirmed {
		h.sendConfirmationAsync(user.Email, user.Username)
		c.JSON(http.StatusOK, gin.H{"message": h.catalog.Get(messages.CheckEmailConfirmation)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.catalog.Get(messages.EmailAlreadyConfirmed)})
}

// ForgotPassword 发送密码重置邮件。无论邮箱是否存在都返回 200。
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "query user failed"})
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"message": h.catalog.Get(messages.UserNotFoundProvidedEmail)})
		return
	}

	email := user.Email
	username := user.Username
	go func() {
		token, err := h.tokens.CreateEmailToken(email)
		if err != nil {
			h.logger.Warn("create reset token failed", slog.String("email", email), slog.String("error", err.Error()))
			return
		}
		if err := h.mailer.SendPasswordReset(email, username, token); err != nil {
			h.logger.Warn("send reset email failed", slog.String("email", email), slog.String("error", err.Error()))
			return
		}
		metrics.EmailsSentTotal.Inc()
	}()

	c.JSON(http.StatusOK, gin.H{"message": h.catalog.Get(messages.PasswordResetSendRequest)})
}

// ResetPassword 用邮件令牌设置新密码。
func (h *Handler) ResetPassword(c *gin.Context) {
	token := c.Query("token")
	newPassword := c.Query("new_password")
	if token == "" || newPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": h.catalog.Get(messages.TokenNotProvided)})
		return
	}

	email, err := h.tokens.EmailFromToken(token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": h.catalog.Get(messages.VerificationError)})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "query user failed"})
		return
	}
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": h.catalog.Get(messages.VerificationError)})
		return
	}

	hash, err := h.hasher.Hash(newPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "hash password failed"})
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), user.ID, hash); err != nil {
		h.logger.Error("change password failed", slog.String("email", email), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "change password failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   toUserResponse(user),
		"detail": h.catalog.Get(messages.PasswordResetComplete),
	})
}

func (h *Handler) issueTokenPair(ctx context.Context, user *model.User) (*tokenResponse, error) {
	accessToken, err := h.tokens.CreateAccessToken(user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := h.tokens.CreateRefreshToken(user.Email)
	if err != nil {
		return nil, err
	}
	if err := h.users.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}
	return &tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// sendConfirmationAsync 异步发送确认邮件；失败仅记日志，不影响主流程。
func (h *Handler) sendConfirmationAsync(email, username string) {
	go func() {
		token, err := h.tokens.CreateEmailToken(email)
		if err != nil {
			h.logger.Warn("create email token failed", slog.String("email", email), slog.String("error", err.Error()))
			return
		}
		if err := h.mailer.SendConfirmation(email, username, token); err != nil {
			h.logger.Warn("send confirmation failed", slog.String("email", email), slog.String("error", err.Error()))
			return
		}
		metrics.EmailsSentTotal.Inc()
	}()
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
