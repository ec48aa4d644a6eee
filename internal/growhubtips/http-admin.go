// Администрирование пользователей: создание авторов, блокировка,
// сброс паролей и сессий.
package growhubtips

import (
	"net/http"
	"strings"

	"github.com/growhub-it/growhubtips/internal/growhubtips/apierrors"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dto"
	"github.com/labstack/echo/v4"
	"github.com/sethvargo/go-password/password"
	"gorm.io/gorm"
)

func (s *Services) AddAdminServices(g *echo.Group) {
	adminGroup := g.Group("admin/", AdminMiddleware, DemoMiddleware)

	adminGroup.GET("users/", s.getUserList)
	adminGroup.POST("users/", s.createUser)

	userGroup := adminGroup.Group("users/:userId/", s.UserMiddleware)
	userGroup.GET("", s.getUser)
	userGroup.PATCH("", s.updateUser)
	userGroup.POST("reset-password/", s.resetUserPassword)
	userGroup.POST("reset-sessions/", s.resetUserSessions)
}

type UserContext struct {
	AuthContext
	TargetUser dao.User
}

func (s *Services) UserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userId := c.Param("userId")

		var user dao.User
		if err := s.db.Where("id = ?", userId).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return EErrorDefined(c, apierrors.ErrUserNotFound)
			}
			return EError(c, err)
		}

		return next(UserContext{c.(AuthContext), user})
	}
}

// getUserList возвращает страницу списка пользователей.
func (s *Services) getUserList(c echo.Context) error {
	offset := 0
	limit := 25
	if err := echo.QueryParamsBinder(c).
		Int("offset", &offset).
		Int("limit", &limit).
		BindError(); err != nil {
		return EError(c, err)
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	query := s.db.
		Model(&dao.User{}).
		Order("created_at desc")

	if search := c.QueryParam("search_query"); search != "" {
		search = "%" + search + "%"
		query = query.Where("email ilike ? or username ilike ? or first_name ilike ? or last_name ilike ?",
			search, search, search, search)
	}

	var users []dao.User
	resp, err := dao.PaginationRequest(offset, limit, query, &users)
	if err != nil {
		return EError(c, err)
	}

	result := make([]dto.User, len(users))
	for i := range users {
		result[i] = *users[i].ToDTO()
	}
	resp.Result = result

	return c.JSON(http.StatusOK, resp)
}

type CreateUserRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name" validate:"omitempty,fullName"`
	LastName    string `json:"last_name" validate:"omitempty,fullName"`
	IsSuperuser bool   `json:"is_superuser"`
}

// createUser создает пользователя и отправляет сгенерированный пароль на почту.
func (s *Services) createUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	req.Email = strings.ToLower(req.Email)
	if !ValidateEmail(req.Email) {
		return EErrorDefined(c, apierrors.ErrInvalidEmail)
	}

	var exist bool
	if err := s.db.Model(&dao.User{}).
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
		ID:          dao.GenUUID(),
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    HashPassword(pass),
		IsSuperuser: req.IsSuperuser,
		IsActive:    true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return EError(c, err)
	}

	if err := s.emailService.NewUserPasswordNotify(user, pass); err != nil {
		return EErrorDefined(c, apierrors.ErrNewUserMailFailed)
	}

	return c.JSON(http.StatusCreated, user.ToDTO())
}

func (s *Services) getUser(c echo.Context) error {
	user := c.(UserContext).TargetUser
	return c.JSON(http.StatusOK, user.ToDTO())
}

type UpdateUserRequest struct {
	IsActive    *bool `json:"is_active"`
	IsSuperuser *bool `json:"is_superuser"`
}

// updateUser меняет роль и активность пользователя. Деактивация
// сбрасывает все его сессии.
func (s *Services) updateUser(c echo.Context) error {
	ctx := c.(UserContext)
	user := ctx.TargetUser

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	if user.ID == ctx.User.ID {
		return EErrorDefined(c, apierrors.ErrBadRequest)
	}

	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}

	if err := s.db.Omit("AvatarAsset").
		Model(&user).
		Select("IsActive", "IsSuperuser").
		Updates(&user).Error; err != nil {
		return EError(c, err)
	}

	if req.IsActive != nil && !*req.IsActive {
		if err := dao.ResetUserSessions(s.db, &user); err != nil {
			return EError(c, err)
		}
	}

	return c.JSON(http.StatusOK, user.ToDTO())
}

// resetUserPassword генерирует новый пароль и отправляет его на почту.
func (s *Services) resetUserPassword(c echo.Context) error {
	user := c.(UserContext).TargetUser

	pass, err := password.Generate(12, 4, 0, false, true)
	if err != nil {
		return EError(c, err)
	}

	user.Password = HashPassword(pass)
	if err := s.db.Model(&user).Select("Password").Updates(&user).Error; err != nil {
		return EError(c, err)
	}

	if err := dao.ResetUserSessions(s.db, &user); err != nil {
		return EError(c, err)
	}

	if err := s.emailService.PasswordResetNotify(user, pass); err != nil {
		return EErrorDefined(c, apierrors.ErrNewUserMailFailed)
	}

	return c.NoContent(http.StatusOK)
}

func (s *Services) resetUserSessions(c echo.Context) error {
	user := c.(UserContext).TargetUser

	if err := dao.ResetUserSessions(s.db, &user); err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusOK)
}
