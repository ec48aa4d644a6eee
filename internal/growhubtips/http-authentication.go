// Аутентификация и авторизация пользователей.
// Обеспечивает безопасный доступ к ресурсам, используя JWT, куки и капчу.
//
// Основные возможности:
//   - Аутентификация пользователей по email и паролю с проверкой капчи.
//   - Генерация и проверка токенов доступа (JWT) с поддержкой обновления.
//   - Блокировка отозванных токенов через менеджер сессий.
//   - Регистрация новых авторов, если она разрешена конфигурацией.
package growhubtips

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/growhub-it/growhubtips/internal/growhubtips/apierrors"

	"github.com/altcha-org/altcha-lib-go"
	"github.com/golang-jwt/jwt/v5"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"
	"github.com/growhub-it/growhubtips/internal/growhubtips/notifications"
	"github.com/growhub-it/growhubtips/internal/growhubtips/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sethvargo/go-password/password"
	"gorm.io/gorm"
)

type Authentication struct {
	db              *gorm.DB
	secret          []byte
	sessionsManager *sessions.SessionsManager
	emailService    *notifications.EmailService
	loginLimiter    *LoginRateLimiter
}

type AuthContext struct {
	echo.Context
	User         *dao.User
	AccessToken  *Token
	RefreshToken *Token
}

type AuthConfig struct {
	Secret         []byte
	DB             *gorm.DB
	SessionManager *sessions.SessionsManager
	Skipper        middleware.Skipper
}

func AuthMiddleware(config AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == "OPTIONS" {
				return c.NoContent(http.StatusOK)
			}

			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			var refreshToken *Token
			var accessToken *Token

			schema, tokenString, ok := strings.Cut(c.Request().Header.Get("Authorization"), " ")
			if !ok {
				// Cookie token
				schema = "Cookies"
				if accessCookie, err := c.Cookie("access_token"); err == nil || accessCookie != nil {
					accessToken = new(Token)
					accessToken.SignedString = accessCookie.Value
					accessToken.Type = "access"
				}

				if refreshCookie, err := c.Cookie("refresh_token"); err == nil || refreshCookie != nil {
					refreshToken = new(Token)
					refreshToken.SignedString = refreshCookie.Value
					refreshToken.Type = "refresh"
				}

				if refreshToken == nil && accessToken == nil {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}
			}
			schema = strings.TrimSpace(schema)

			if schema != "Cookies" {
				accessToken = new(Token)
				accessToken.SignedString = strings.TrimSpace(tokenString)
				accessToken.Type = "access"
			}

			var err error
			keyFunc := func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return config.Secret, nil
			}

			var accessError error
			if accessToken != nil {
				accessToken.JWT, accessError = jwt.Parse(accessToken.SignedString, keyFunc)
			}

			var refreshError error
			if refreshToken != nil {
				refreshToken.JWT, refreshError = jwt.Parse(refreshToken.SignedString, keyFunc)
				if refreshError != nil {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}
			}

			var user *dao.User

			// Prolong if expired
			if errors.Is(accessError, jwt.ErrTokenExpired) || accessToken == nil {
				accessToken, user, err = config.tokenProlong(c, refreshToken)
				if accessToken == nil || user == nil {
					return err
				}
			} else if accessError != nil {
				if accessToken.JWT != nil && !accessToken.JWT.Valid {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}
				return EError(c, accessError)
			} else {
				// Check if token not blacklisted
				blacklisted, err := config.SessionManager.IsTokenBlacklisted(accessToken.JWT.Signature)
				if err != nil {
					return EError(c, err)
				}

				if blacklisted {
					return EErrorDefined(c, apierrors.ErrTokenExpired)
				}

				claims, ok := accessToken.JWT.Claims.(jwt.MapClaims)
				if !ok || !accessToken.JWT.Valid {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}
				user = new(dao.User)

				// Fetch user
				if err := config.DB.
					Joins("AvatarAsset").
					Where("users.id = ?", claims["user_id"].(string)).
					First(user).Error; err != nil {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}

				//Check if token older than session reseted
				issued, ok := claims["iat"].(float64)
				if !ok {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}

				var reseted sql.NullBool
				if err := config.DB.Model(&dao.SessionsReset{}).
					Select("? < max(reseted_at)", time.Unix(int64(issued), 0)).
					Where("user_id = ?", user.ID).Find(&reseted).Error; err != nil {
					return EError(c, err)
				}

				if reseted.Valid && reseted.Bool {
					return EErrorDefined(c, apierrors.ErrSessionReset)
				}
			}

			if user == nil {
				return EError(c, errors.New("nil user"))
			}

			// If user blocked
			if !user.IsActive {
				if err := dao.ResetUserSessions(config.DB, user); err != nil {
					return EError(c, err)
				}

				return EErrorDefined(c, apierrors.ErrSessionReset)
			}

			if err := dao.UpdateUserLastActivityTime(config.DB, user); err != nil {
				EError(c, err)
			}

			return next(AuthContext{c, user, accessToken, refreshToken})
		}
	}
}

// AdminMiddleware разрешает действие только администратору.
func AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !c.(AuthContext).User.IsSuperuser {
			return EErrorDefined(c, apierrors.ErrAdminRoleRequired)
		}
		return next(c)
	}
}

func AddAuthenticationServices(db *gorm.DB, g *echo.Echo, secret []byte, sessionManager *sessions.SessionsManager, emailService *notifications.EmailService) *Authentication {
	ret := &Authentication{db, secret, sessionManager, emailService, NewLoginRateLimiter(10, time.Minute)}

	g.POST("api/sign-in/", ret.emailLogin)
	g.POST("api/sign-up/", ret.emailSignUp)
	g.POST("api/sign-out/", ret.logout)

	g.GET("api/captcha/", ret.requestCaptcha)
	return ret
}

type LoginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	CaptchaPayload string `json:"captcha_payload"`
}

// emailLogin аутентифицирует пользователя по email и паролю с проверкой капчи.
func (a *Authentication) emailLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	req.Email = strings.ToLower(req.Email)

	if !a.loginLimiter.CheckAndRecord(c.RealIP()) {
		return EErrorDefined(c, apierrors.ErrLoginTriesExceed)
	}

	if !CaptchaService.Validate(req.CaptchaPayload) {
		return EErrorDefined(c, apierrors.ErrCaptchaFail)
	}

	if req.Email == "" || req.Password == "" {
		return EErrorDefined(c, apierrors.ErrLoginCredentialsRequired)
	}

	if !ValidateEmail(req.Email) {
		return EErrorDefined(c, apierrors.ErrInvalidEmail)
	}

	var user dao.User
	if err := a.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return EErrorDefined(c, apierrors.ErrFailedLogin)
		}
		return EError(c, err)
	}

	if !user.IsActive {
		return EErrorDefined(c, apierrors.ErrUserDeactivated)
	}

	if !checkPassword(req.Password, user.Password) {
		return EErrorDefined(c, apierrors.ErrFailedLogin)
	}

	tm := time.Now()

	user.LastActive = &tm
	user.LastLoginTime = &tm

	user.LastLoginIp = c.RealIP()
	user.TokenUpdatedAt = &tm
	if err := a.db.Model(&user).Select("LastActive", "LastLoginTime", "LastLoginIp", "TokenUpdatedAt").Updates(&user).Error; err != nil {
		return EError(c, err)
	}

	accessToken, refreshToken, err := createAccessToken(user.ID.String())
	if err != nil {
		return EError(c, err)
	}

	setAuthCookies(c, accessToken, refreshToken)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"access_token":  accessToken.SignedString,
		"refresh_token": refreshToken.SignedString,
		"user":          user.ToDTO(),
	})
}

type SignUpRequest struct {
	Email          string `json:"email"`
	FirstName      string `json:"first_name" validate:"omitempty,fullName"`
	LastName       string `json:"last_name" validate:"omitempty,fullName"`
	CaptchaPayload string `json:"captcha_payload"`
}

// emailSignUp регистрирует нового автора и отправляет пароль на почту.
func (a *Authentication) emailSignUp(c echo.Context) error {
	if !cfg.SignUpEnable {
		return EErrorDefined(c, apierrors.ErrSignupDisabled)
	}

	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	req.Email = strings.ToLower(req.Email)

	if !CaptchaService.Validate(req.CaptchaPayload) {
		return EErrorDefined(c, apierrors.ErrCaptchaFail)
	}

	if !ValidateEmail(req.Email) {
		return EErrorDefined(c, apierrors.ErrInvalidEmail)
	}

	var exist bool
	if err := a.db.Model(&dao.User{}).
		Select("count(*) > 0").
		Where("email = ?", req.Email).
		Find(&exist).Error; err != nil {
		return EError(c, err)
	}
	if exist {
		return EErrorDefined(c, apierrors.ErrUserAlreadyExist)
	}

	pass, err := password.Generate(12, 4, 0, false, true)
	if err != nil {
		return EError(c, err)
	}

	user := dao.User{
		ID:        dao.GenUUID(),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  HashPassword(pass),
		IsActive:  true,
	}

	if err := a.db.Create(&user).Error; err != nil {
		return EError(c, err)
	}

	if err := a.emailService.NewUserPasswordNotify(user, pass); err != nil {
		return EErrorDefined(c, apierrors.ErrNewUserMailFailed)
	}

	return c.JSON(http.StatusCreated, user.ToDTO())
}

// logout отзывает токены текущей сессии и чистит куки.
func (a *Authentication) logout(c echo.Context) error {
	if accessCookie, err := c.Cookie("access_token"); err == nil && accessCookie != nil {
		if token, err := jwt.Parse(accessCookie.Value, func(t *jwt.Token) (interface{}, error) {
			return a.secret, nil
		}); err == nil {
			a.sessionsManager.BlacklistToken(token.Signature)
		}
	}
	if refreshCookie, err := c.Cookie("refresh_token"); err == nil && refreshCookie != nil {
		if token, err := jwt.Parse(refreshCookie.Value, func(t *jwt.Token) (interface{}, error) {
			return a.secret, nil
		}); err == nil {
			a.sessionsManager.BlacklistToken(token.Signature)
		}
	}

	clearAuthCookies(c)

	return c.NoContent(http.StatusOK)
}

func (a *AuthConfig) tokenProlong(c echo.Context, token *Token) (*Token, *dao.User, error) {
	if token == nil {
		return nil, nil, EErrorDefined(c, apierrors.ErrRefreshTokenRequired)
	}
	// Check if token not blacklisted
	{
		blacklisted, err := a.SessionManager.IsTokenBlacklisted(token.JWT.Signature)
		if err != nil {
			EError(c, err)
			return nil, nil, EErrorDefined(c, apierrors.ErrTokenExpired)
		}

		if blacklisted {
			return nil, nil, EErrorDefined(c, apierrors.ErrTokenExpired)
		}
	}

	// Blacklist old refresh token
	if err := a.SessionManager.BlacklistToken(token.JWT.Signature); err != nil {
		return nil, nil, EError(c, err)
	}

	claims, ok := token.JWT.Claims.(jwt.MapClaims)
	if !ok || !token.JWT.Valid {
		return nil, nil, EErrorDefined(c, apierrors.ErrTokenInvalid)
	}

	var user dao.User
	if err := a.DB.
		Joins("AvatarAsset").
		Where("users.id = ?", claims["user_id"].(string)).
		First(&user).Error; err != nil {
		return nil, nil, EErrorDefined(c, apierrors.ErrTokenInvalid)
	}

	//Check if token older than session reseted
	issued, ok := claims["iat"].(float64)
	if !ok {
		return nil, nil, EErrorDefined(c, apierrors.ErrTokenInvalid)
	}

	var reseted sql.NullBool
	if err := a.DB.Model(&dao.SessionsReset{}).
		Select("? < max(reseted_at)", time.Unix(int64(issued), 0)).
		Where("user_id = ?", user.ID).Find(&reseted).Error; err != nil {
		return nil, nil, EError(c, err)
	}

	if reseted.Valid && reseted.Bool {
		return nil, nil, EErrorDefined(c, apierrors.ErrSessionReset)
	}

	accessToken, refreshToken, err := createAccessToken(user.ID.String())
	if err != nil {
		return nil, nil, EError(c, err)
	}

	setAuthCookies(c, accessToken, refreshToken)

	return accessToken, &user, nil
}

// requestCaptcha генерирует и возвращает вызов капчи.
func (a *Authentication) requestCaptcha(c echo.Context) error {
	expires := time.Now().Add(AltchaExpires)
	challenge, err := altcha.CreateChallenge(altcha.ChallengeOptions{
		HMACKey:   AltchaHMACKey,
		MaxNumber: 10000,
		Expires:   &expires,
		Params:    url.Values{},
	})
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, challenge)
}
