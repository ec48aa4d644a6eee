// Профиль текущего пользователя: данные, пароль, аватар.
package growhubtips

import (
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/growhub-it/growhubtips/internal/growhubtips/apierrors"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"
	filestorage "github.com/growhub-it/growhubtips/internal/growhubtips/file-storage"
	"github.com/labstack/echo/v4"
)

func (s *Services) AddUserServices(g *echo.Group) {
	g.GET("users/me/", s.getMe)
	g.PATCH("users/me/", s.updateMe, DemoMiddleware)
	g.POST("users/me/change-password/", s.changeMyPassword, DemoMiddleware)
	g.POST("users/me/avatar/", s.uploadMyAvatar, DemoMiddleware)
	g.DELETE("users/me/avatar/", s.deleteMyAvatar, DemoMiddleware)
	g.POST("users/me/reset-sessions/", s.resetMySessions)
}

// getMe возвращает профиль текущего пользователя.
func (s *Services) getMe(c echo.Context) error {
	return c.JSON(http.StatusOK, c.(AuthContext).User.ToDTO())
}

type UpdateMeRequest struct {
	Username  *string `json:"username" validate:"omitempty,username"`
	FirstName *string `json:"first_name" validate:"omitempty,fullName"`
	LastName  *string `json:"last_name" validate:"omitempty,fullName"`
	Bio       *string `json:"bio"`
}

func (s *Services) updateMe(c echo.Context) error {
	user := c.(AuthContext).User

	var req UpdateMeRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	if req.Username != nil {
		user.Username = req.Username
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.db.Omit("AvatarAsset").Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return EErrorDefined(c, apierrors.ErrUserAlreadyExist)
		}
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, user.ToDTO())
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"min=8"`
}

// changeMyPassword меняет пароль и сбрасывает остальные сессии пользователя.
func (s *Services) changeMyPassword(c echo.Context) error {
	user := c.(AuthContext).User

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	if !checkPassword(req.OldPassword, user.Password) {
		return EErrorDefined(c, apierrors.ErrFailedLogin)
	}

	user.Password = HashPassword(req.NewPassword)
	if err := s.db.Model(user).Select("Password").Updates(user).Error; err != nil {
		return EError(c, err)
	}

	if err := dao.ResetUserSessions(s.db, user); err != nil {
		return EError(c, err)
	}

	accessToken, refreshToken, err := createAccessToken(user.ID.String())
	if err != nil {
		return EError(c, err)
	}
	setAuthCookies(c, accessToken, refreshToken)

	return c.NoContent(http.StatusOK)
}

// uploadMyAvatar загружает аватар. Хранится уменьшенная копия изображения.
func (s *Services) uploadMyAvatar(c echo.Context) error {
	user := c.(AuthContext).User

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return EErrorDefined(c, apierrors.ErrMediaFileRequired)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return EError(c, err)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	thumb, size, thumbType, err := imageThumbnail(file, contentType)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrMediaNotAnImage)
	}

	asset := dao.MediaAsset{
		Id:           dao.GenUUID(),
		Name:         fileHeader.Filename,
		FileSize:     int64(size),
		ContentType:  thumbType,
		UploadedById: uuid.NullUUID{UUID: user.ID, Valid: true},
	}

	if err := s.storage.SaveReader(thumb, int64(size), asset.Id, thumbType, &filestorage.Metadata{
		UploadedBy: user.ID.String(),
	}); err != nil {
		return EErrorDefined(c, apierrors.ErrMediaUploadFailed)
	}

	if err := s.db.Create(&asset).Error; err != nil {
		return EError(c, err)
	}

	oldAvatar := user.AvatarId
	user.AvatarId = uuid.NullUUID{UUID: asset.Id, Valid: true}
	if err := s.db.Model(user).Select("AvatarId").Updates(user).Error; err != nil {
		return EError(c, err)
	}

	if oldAvatar.Valid {
		var old dao.MediaAsset
		if err := s.db.Where("id = ?", oldAvatar.UUID).First(&old).Error; err == nil {
			s.db.Delete(&old)
		}
	}

	return c.JSON(http.StatusOK, asset.ToDTO())
}

func (s *Services) deleteMyAvatar(c echo.Context) error {
	user := c.(AuthContext).User

	if !user.AvatarId.Valid {
		return c.NoContent(http.StatusOK)
	}

	avatarId := user.AvatarId.UUID
	user.AvatarId = uuid.NullUUID{}
	if err := s.db.Model(user).Select("AvatarId").Updates(user).Error; err != nil {
		return EError(c, err)
	}

	var old dao.MediaAsset
	if err := s.db.Where("id = ?", avatarId).First(&old).Error; err == nil {
		s.db.Delete(&old)
	}

	return c.NoContent(http.StatusOK)
}

// resetMySessions отзывает все сессии пользователя кроме текущей.
func (s *Services) resetMySessions(c echo.Context) error {
	ctx := c.(AuthContext)

	if err := dao.ResetUserSessions(s.db, ctx.User); err != nil {
		return EError(c, err)
	}

	accessToken, refreshToken, err := createAccessToken(ctx.User.ID.String())
	if err != nil {
		return EError(c, err)
	}
	setAuthCookies(c, accessToken, refreshToken)

	return c.NoContent(http.StatusOK)
}
