package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"log/slog"

	"photoshare/internal/api/auth"
	"photoshare/internal/api/middleware"
	"photoshare/internal/config"
	"photoshare/internal/model"
	"photoshare/internal/pkg/imagestore"
	"photoshare/internal/pkg/messages"
	"photoshare/internal/pkg/metrics"
	"photoshare/internal/pkg/notify"
	"photoshare/internal/pkg/qrcode"
	"photoshare/internal/pkg/tokens"
	"photoshare/internal/pkg/tokenstore"
	"photoshare/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 它持有数据库连接、Redis 客户端、令牌服务以及 Gin 路由引擎。
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
	rdb    *redis.Client
	router *gin.Engine

	catalog *messages.Catalog
	tokens  *tokens.Service
	auth    *auth.Handler

	users    UserStore
	pictures PictureStore
	tags     TagStore
	ratings  RatingStore
	comments CommentStore

	profiles ProfileCache
	uploader Uploader
	qr       QREncoder
}

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	EditProfile(ctx context.Context, email, username, avatarURL string) (*model.User, error)
	GetProfile(ctx context.Context, user *model.User) (*repository.Profile, error)
	Ban(ctx context.Context, email string) (*model.User, error)
	Activate(ctx context.Context, email string) (*model.User, error)
	ChangeRole(ctx context.Context, email string, role model.Role) (*model.User, error)
	Search(ctx context.Context, f repository.UserFilter) ([]model.User, error)
}

type PictureStore interface {
	Save(ctx context.Context, picture *model.Picture, tagNames []string) (*model.Picture, error)
	GetByID(ctx context.Context, id uint) (*model.Picture, error)
	UpdateName(ctx context.Context, id, userID uint, name string) (*model.Picture, error)
	UpdateDescription(ctx context.Context, id, userID uint, description string) (*model.Picture, error)
	Remove(ctx context.Context, id uint, actor *model.User) (*model.Picture, error)
	Search(ctx context.Context, f repository.PictureFilter) ([]model.Picture, error)
}

type TagStore interface {
	List(ctx context.Context) ([]model.Tag, error)
	GetByID(ctx context.Context, id uint) (*model.Tag, error)
	Update(ctx context.Context, id uint, tagname string) (*model.Tag, error)
	Remove(ctx context.Context, id uint) (*model.Tag, error)
}

type RatingStore interface {
	Create(ctx context.Context, pictureID, userID uint, value int) (*model.Rating, error)
	Remove(ctx context.Context, pictureID, userID uint) (*model.Rating, error)
	PictureRatings(ctx context.Context, pictureID uint) (*model.Picture, error)
}

type CommentStore interface {
	Create(ctx context.Context, pictureID, userID uint, text string) (*model.Comment, error)
	Update(ctx context.Context, commentID, pictureID, userID uint, text string) (*model.Comment, error)
	Delete(ctx context.Context, commentID, pictureID uint) (*model.Comment, error)
	ListByPicture(ctx context.Context, pictureID uint, skip, limit int) ([]model.Comment, error)
}

type ProfileCache interface {
	CacheProfile(ctx context.Context, username string, payload []byte, ttl time.Duration) error
	CachedProfile(ctx context.Context, username string) ([]byte, error)
	InvalidateProfile(ctx context.Context, username string) error
}

type Uploader interface {
	Upload(file io.Reader, folder string, tr imagestore.Transform) (string, error)
}

type QREncoder interface {
	Generate(link string) string
}

// NewServer 初始化 API 服务器。
//
// 它负责：
// 1. 连接 Postgres 数据库并执行自动迁移
// 2. 连接 Redis
// 3. 初始化令牌服务、邮件通知器与图床客户端
// 4. 初始化 Gin 路由引擎
//
// 参数:
//
//	ctx: 上下文
//	cfg: 配置对象
//	logger: 日志记录器
//
// 返回值:
//
//	*Server: 初始化完成的服务器实例
//	error: 初始化失败返回错误
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent), // 关闭GORM调试日志
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Picture{},
		&model.Tag{},
		&model.Comment{},
		&model.Rating{},
		&model.InvalidToken{},
	); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	catalog := messages.New(cfg.App.Locale)
	tokenSvc := tokens.NewService(
		cfg.Security.JWTSecret,
		cfg.Security.AccessTTL,
		cfg.Security.RefreshTTL,
		cfg.Security.EmailTokenTTL,
	)
	store := tokenstore.NewStore(rdb)
	ledger := repository.NewTokens(db)
	usersRepo := repository.NewUsers(db)
	emailNotifier := notify.NewEmailNotifier(&cfg.Email, logger)

	// 初始化 Prometheus 指标
	metrics.InitMetrics()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		rdb:     rdb,
		router:  r,
		catalog: catalog,
		tokens:  tokenSvc,
		auth: auth.NewHandler(
			usersRepo,
			tokenSvc,
			store,
			ledger,
			emailNotifier,
			tokens.BcryptHasher{},
			catalog,
			logger,
		),
		users:    usersRepo,
		pictures: repository.NewPictures(db),
		tags:     repository.NewTags(db),
		ratings:  repository.NewRatings(db),
		comments: repository.NewComments(db),
		profiles: store,
		uploader: imagestore.NewClient(cfg.ImageStore.BaseURL, cfg.ImageStore.APIKey),
		qr:       qrcode.NewGenerator(),
	}
	s.registerRoutes(store, ledger)
	return s, nil
}

// Run 启动 HTTP 服务器并开始监听请求。
func (s *Server) Run() error {
	s.logger.Info("api server listening", slog.String("addr", s.cfg.App.HTTPAddr))
	return s.router.Run(s.cfg.App.HTTPAddr)
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Close 关闭数据库与缓存连接。
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
		} else {
			if closeErr := sqlDB.Close(); closeErr != nil {
				if firstErr == nil {
					firstErr = closeErr
				}
			}
		}
	}
	return firstErr
}

// registerRoutes 注册所有的 API 路由。
//
// 三个固定的角色集合：amu（全部角色）、am（管理员与版主）、admin。
func (s *Server) registerRoutes(revoked middleware.RevocationChecker, ledger middleware.LedgerChecker) {
	// Prometheus metrics 端点
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/healthz", s.handleHealthz)

	apiGroup := s.router.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/signup", s.auth.Signup)
	authGroup.POST("/login", s.auth.Login)
	authGroup.GET("/refresh_token", s.auth.Refresh)
	authGroup.GET("/confirmed_email/:token", s.auth.ConfirmedEmail)
	authGroup.POST("/request_email", s.auth.RequestEmail)
	authGroup.POST("/forgot_password", s.auth.ForgotPassword)
	authGroup.GET("/reset_password", s.auth.ResetPassword)

	authed := apiGroup.Group("")
	authed.Use(middleware.Auth(s.tokens, revoked, ledger, s.users, s.catalog))

	amu := middleware.RequireRoles(s.catalog, model.RoleAdmin, model.RoleModerator, model.RoleUser)
	am := middleware.RequireRoles(s.catalog, model.RoleAdmin, model.RoleModerator)
	adminOnly := middleware.RequireRoles(s.catalog, model.RoleAdmin)

	authed.POST("/auth/logout", s.auth.Logout)

	users := authed.Group("/users")
	users.GET("/me", amu, s.handleGetMe)
	users.PATCH("/me", amu, s.handleEditMe)
	users.GET("", amu, s.handleSearchUsers)
	users.GET("/:username", am, s.handleUserProfile)
	users.PATCH("/:username", am, s.handleManageUser)

	pictures := authed.Group("/pictures")
	pictures.POST("", amu, s.handleUploadPicture)
	pictures.GET("", amu, s.handleSearchPictures)
	pictures.GET("/:id", amu, s.handleGetPicture)
	pictures.PATCH("/:id/name", amu, s.handleUpdatePictureName)
	pictures.PATCH("/:id/description", amu, s.handleUpdatePictureDescription)
	pictures.DELETE("/:id", amu, s.handleDeletePicture)
	pictures.GET("/:id/qrcode", amu, s.handlePictureQRCode)
	pictures.GET("/:id/tags", am, s.handlePictureTags)

	pictures.POST("/:id/ratings", amu, s.handleRatePicture)
	pictures.GET("/:id/ratings", amu, s.handlePictureRatings)
	pictures.DELETE("/:id/ratings/:user_id", adminOnly, s.handleDeleteRating)

	pictures.POST("/:id/comments", amu, s.handleCreateComment)
	pictures.GET("/:id/comments", amu, s.handleListComments)
	pictures.PATCH("/:id/comments/:comment_id", amu, s.handleUpdateComment)
	pictures.DELETE("/:id/comments/:comment_id", am, s.handleDeleteComment)

	tags := authed.Group("/tags")
	tags.GET("", am, s.handleListTags)
	tags.GET("/:id", am, s.handleGetTag)
	tags.PATCH("/:id", am, s.handleUpdateTag)
	tags.DELETE("/:id", am, s.handleDeleteTag)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	var one int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
