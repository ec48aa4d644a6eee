// Пакет growhubtips собирает HTTP-сервер платформы публикации советов
// по садоводству: API редактора, управление публикациями и страницами,
// медиатека, публичные SEO-страницы.
//
// Основные возможности:
//   - REST API для публикаций, страниц, пользователей и медиатеки.
//   - Редактор документов с палитрой блоков и автосохранением.
//   - Публичный рендеринг опубликованного контента.
//   - Метрики Prometheus на отдельном порту.
package growhubtips

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/growhub-it/growhubtips/internal/growhubtips/cronmanager"
	"github.com/growhub-it/growhubtips/internal/growhubtips/types"

	"github.com/nfnt/resize"

	"image/jpeg"
	_ "image/png"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/pbkdf2"
	"gorm.io/gorm"

	"github.com/growhub-it/growhubtips/internal/growhubtips/autosave"
	"github.com/growhub-it/growhubtips/internal/growhubtips/config"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"
	filestorage "github.com/growhub-it/growhubtips/internal/growhubtips/file-storage"
	"github.com/growhub-it/growhubtips/internal/growhubtips/maintenance"
	"github.com/growhub-it/growhubtips/internal/growhubtips/notifications"
	"github.com/growhub-it/growhubtips/internal/growhubtips/sessions"
)

type Services struct {
	db              *gorm.DB
	storage         filestorage.FileStorage
	emailService    *notifications.EmailService
	sessionsManager *sessions.SessionsManager
	autosaver       *autosave.Coordinator
	fallback        *autosave.BoltFallback
}

var cfg *config.Config
var appVersion string

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "GrowHubTips")
		return next(c)
	}
}

func Server(db *gorm.DB, c *config.Config, version string) {
	cfg = c
	appVersion = version

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		slog.Error("Unhandled error in endpoint", "url", c.Request().URL, "err", err)
		EErrorMsgStatus(c, nil, code)
	}

	storage, err := filestorage.NewMinioStorage(cfg.AWSEndpoint, cfg.AWSAccessKey, cfg.AWSSecretKey, false, cfg.AWSBucketName)
	if err != nil {
		slog.Error("Fail init Minio connection", "err", err)
		os.Exit(1)
	}

	dao.FileStorage = storage

	fallback, err := autosave.NewBoltFallback(cfg.AutosaveDBPath)
	if err != nil {
		slog.Error("Open autosave fallback db", "err", err)
		os.Exit(1)
	}

	autosaver := autosave.NewCoordinator(
		dao.DraftSaver{DB: db},
		fallback,
		autosave.WithInterval(cfg.AutosaveInterval()),
	)
	for _, collector := range autosaver.Collectors() {
		if err := prometheus.Register(collector); err != nil {
			slog.Error("Register autosave collector", "err", err)
		}
	}

	sm := sessions.NewSessionsManager(cfg, types.RefreshTokenExpiresPeriod+time.Hour)
	es, err := notifications.NewEmailService(cfg)
	if err != nil {
		slog.Error("Init email service", "err", err)
		os.Exit(1)
	}

	jobRegistry := cronmanager.JobRegistry{
		"assets_clean": cronmanager.Job{
			Func:     maintenance.NewAssetCleaner(db, storage).CleanAssets,
			Schedule: "0 1 * * *", // daily at 01:00
		},
		"drafts_clean": cronmanager.Job{
			Func:     maintenance.NewDraftsCleaner(db, fallback).CleanDrafts,
			Schedule: "30 1 * * *", // daily at 01:30
		},
	}

	// Create CronManager
	cronManager := cronmanager.NewCronManager(jobRegistry)
	if err := cronManager.LoadJobs(); err != nil {
		slog.Error("Failed to load cron jobs", "err", err)
		os.Exit(1)
	}

	s := &Services{
		db:              db,
		storage:         storage,
		emailService:    es,
		sessionsManager: sm,
		autosaver:       autosaver,
		fallback:        fallback,
	}

	// Start cronManager
	cronManager.Start()

	// Create a channel to handle termination signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down gracefully, press Ctrl+C again to force")
		cronManager.Stop()
		if err := autosaver.Close(); err != nil {
			slog.Error("Flush autosave drafts", "err", err)
		}
		fallback.Close()
		es.Stop()
		os.Exit(0)
	}()

	// Global middlewares
	e.Use(ServerHeader)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: "5M",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/auth/media/" ||
				c.Path() == "/api/auth/users/me/avatar/" ||
				strings.Contains(c.Path(), "/api/auth/media/tus/")
		},
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     9,
		MinLength: 2048,
	}))
	e.Use(echoprometheus.NewMiddleware("growhubtips"))
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/sitemap") ||
				strings.HasPrefix(c.Request().URL.Path, "/robots") ||
				strings.HasPrefix(c.Request().URL.Path, "/rss")
		},
	}))

	e.Validator = NewRequestValidator()

	AddAuthenticationServices(db, e, []byte(cfg.SecretKey), sm, es)

	//services with auth
	apiGroup := e.Group("/api/")

	authGroup := apiGroup.Group("auth/",
		AuthMiddleware(AuthConfig{
			Secret:         []byte(cfg.SecretKey),
			DB:             db,
			SessionManager: sm,
		}),
	)

	s.AddPostServices(authGroup)
	s.AddPageServices(authGroup)
	s.AddMediaServices(authGroup)
	s.AddEditorServices(authGroup)
	s.AddUserServices(authGroup)
	s.AddAdminServices(authGroup)

	// services without auth
	s.AddPublicServices(e, apiGroup)

	// Version endpoint
	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version": version,
			"sign_up": cfg.SignUpEnable,
			"demo":    cfg.Demo,
			"captcha": !cfg.CaptchaDisabled,
		})
	})

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Front handler
	if cfg.FrontFilesPath != "" {
		slog.Info("Start front routing")
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:  cfg.FrontFilesPath,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				return strings.Contains(c.Path(), "tus")
			},
		}))
	}

	// Prometheus metrics
	go func() {
		bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "growhubtips",
			Name:      "boot_time",
			Help:      "Server startup time",
		})
		bootTimeGauge.Set(float64(time.Now().UnixMilli()))

		if err := prometheus.Register(bootTimeGauge); err != nil {
			slog.Error("Register boot time gauge", "err", err)
			os.Exit(1)
		}

		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler()) // adds route to serve gathered metrics
		if err := metrics.Start(":2112"); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	if err := e.Start(":8080"); err != nil {
		slog.Error("Server fail", "err", err)
	}
}

// Проверка email на корректность
func ValidateEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// Проверка хешированого пароля
func checkPassword(password string, pass string) bool {
	ss := strings.Split(pass, "$")
	if len(ss) == 4 {
		if base64.StdEncoding.EncodeToString(pbkdf2.Key([]byte(password), []byte(ss[2]), 260000, 32, sha256.New)) == ss[3] {
			return true
		} else {
			return false
		}
	}

	return false
}

// HashPassword хеширует пароль в формате pbkdf2_sha256
func HashPassword(password string) string {
	saltRaw := make([]byte, 16)
	rand.Read(saltRaw)
	salt := base64.RawStdEncoding.EncodeToString(saltRaw)

	hash := base64.StdEncoding.EncodeToString(pbkdf2.Key([]byte(password), []byte(salt), 260000, 32, sha256.New))
	return fmt.Sprintf("pbkdf2_sha256$260000$%s$%s", salt, hash)
}

// Генерация ключа доступа
func createAccessToken(userId string) (*Token, *Token, error) {
	ta, err := GenJwtToken([]byte(cfg.SecretKey), "access", userId)
	if err != nil {
		return nil, nil, err
	}

	tr, err := GenJwtToken([]byte(cfg.SecretKey), "refresh", userId)
	if err != nil {
		return nil, nil, err
	}
	return ta, tr, err
}

func setAuthCookies(c echo.Context, accessToken *Token, refreshToken *Token) {
	accessCookie := new(http.Cookie)
	accessCookie.Name = "access_token"
	accessCookie.Value = accessToken.SignedString
	accessCookie.HttpOnly = true
	accessCookie.Secure = true
	accessCookie.Path = "/"
	accessCookie.SameSite = http.SameSiteNoneMode
	accessCookie.Expires = time.Now().Add(types.TokenExpiresPeriod)
	c.SetCookie(accessCookie)

	refreshCookie := new(http.Cookie)
	refreshCookie.Name = "refresh_token"
	refreshCookie.Value = refreshToken.SignedString
	refreshCookie.HttpOnly = true
	refreshCookie.Secure = true
	refreshCookie.Path = "/"
	refreshCookie.SameSite = http.SameSiteNoneMode
	refreshCookie.Expires = time.Now().Add(types.RefreshTokenExpiresPeriod)
	c.SetCookie(refreshCookie)
}

func clearAuthCookies(c echo.Context) {
	accessCookie := new(http.Cookie)
	accessCookie.Name = "access_token"
	accessCookie.Value = ""
	accessCookie.HttpOnly = true
	accessCookie.Secure = true
	accessCookie.Path = "/"
	accessCookie.SameSite = http.SameSiteNoneMode
	accessCookie.MaxAge = -1
	c.SetCookie(accessCookie)

	refreshCookie := new(http.Cookie)
	refreshCookie.Name = "refresh_token"
	refreshCookie.Value = ""
	refreshCookie.HttpOnly = true
	refreshCookie.Secure = true
	refreshCookie.Path = "/"
	refreshCookie.SameSite = http.SameSiteNoneMode
	refreshCookie.MaxAge = -1
	c.SetCookie(refreshCookie)
}

type Token struct {
	JWT          *jwt.Token
	SignedString string
	Type         string
}

// Генерация JWT ключа
func GenJwtToken(secret []byte, tokenType string, userid string) (*Token, error) {
	u, _ := uuid.NewV4()
	claims := jwt.MapClaims{
		"exp":        jwt.NewNumericDate(time.Now().Add(types.TokenExpiresPeriod)),
		"iat":        jwt.NewNumericDate(time.Now()),
		"jti":        fmt.Sprintf("%x", u),
		"token_type": tokenType,
		"user_id":    userid,
	}
	if tokenType == "refresh" {
		claims["exp"] = jwt.NewNumericDate(time.Now().Add(types.RefreshTokenExpiresPeriod))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedString, err := token.SignedString(secret)
	if err != nil {
		return nil, err
	}

	// Waiting for PR https://github.com/golang-jwt/jwt/pull/417
	sigStr := signedString[strings.LastIndex(signedString, ".")+1:]
	sig, err := base64.RawURLEncoding.DecodeString(sigStr)
	if err != nil {
		return nil, err
	}
	token.Signature = sig

	return &Token{
		JWT:          token,
		SignedString: signedString,
		Type:         tokenType,
	}, nil
}

func imageThumbnail(r io.Reader, contentType string) (io.Reader, int, string, error) {
	var err error
	dataType := "image/jpeg"

	buf := new(bytes.Buffer)
	switch contentType {
	case "image/gif":
		io.Copy(buf, r)
		dataType = "image/gif"
	default:
		var img image.Image
		img, _, err = image.Decode(r)
		if err != nil {
			return nil, 0, "", err
		}
		thmb := resize.Thumbnail(512, 512, img, resize.Lanczos3)
		err = jpeg.Encode(buf, thmb, &jpeg.Options{Quality: 80})
	}
	return buf, buf.Len(), dataType, err
}
