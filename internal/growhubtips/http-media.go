// Медиатека: загрузка файлов, миниатюры изображений, докачиваемые
// загрузки по протоколу TUS и выдача файлов.
//
// Основные возможности:
//   - Загрузка файлов через multipart и TUS.
//   - Автоматические миниатюры для изображений.
//   - Защита от удаления файлов, на которые ссылается контент.
package growhubtips

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/growhub-it/growhubtips/internal/growhubtips/apierrors"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dto"
	filestorage "github.com/growhub-it/growhubtips/internal/growhubtips/file-storage"
	"github.com/labstack/echo/v4"
	tusd "github.com/tus/tusd/v2/pkg/handler"
)

func (s *Services) AddMediaServices(g *echo.Group) {
	g.GET("media/", s.getMediaList)
	g.POST("media/", s.uploadMedia)

	assetGroup := g.Group("media/:assetId/", s.MediaMiddleware)
	assetGroup.GET("info/", s.getMediaInfo)
	assetGroup.DELETE("", s.deleteMedia)

	g.Any("media/tus/*", s.storage.GetTUSHandler(cfg, "/api/auth/media/tus/", s.mediaUploadValidator, s.mediaPostUploadHook))
}

// getMediaList возвращает страницу медиатеки.
func (s *Services) getMediaList(c echo.Context) error {
	offset := 0
	limit := 50
	if err := echo.QueryParamsBinder(c).
		Int("offset", &offset).
		Int("limit", &limit).
		BindError(); err != nil {
		return EError(c, err)
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := s.db.
		Preload("UploadedBy").
		Model(&dao.MediaAsset{}).
		Order("created_at desc")

	if search := c.QueryParam("search_query"); search != "" {
		query = query.Where("name ilike ?", "%"+search+"%")
	}

	var assets []dao.MediaAsset
	resp, err := dao.PaginationRequest(offset, limit, query, &assets)
	if err != nil {
		return EError(c, err)
	}

	result := make([]dto.MediaAsset, len(assets))
	for i := range assets {
		result[i] = *assets[i].ToDTO()
	}
	resp.Result = result

	return c.JSON(http.StatusOK, resp)
}

// uploadMedia принимает файл через multipart и регистрирует его в медиатеке.
// Для изображений дополнительно сохраняется миниатюра.
func (s *Services) uploadMedia(c echo.Context) error {
	user := c.(AuthContext).User

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return EErrorDefined(c, apierrors.ErrMediaFileRequired)
	}

	if fileHeader.Size > apierrors.MediaMaxSizeMB*1024*1024 {
		return EErrorDefined(c, apierrors.ErrMediaTooLarge.WithFormattedMessage(apierrors.MediaMaxSizeMB))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return EError(c, err)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	asset := dao.MediaAsset{
		Id:           dao.GenUUID(),
		Name:         fileHeader.Filename,
		FileSize:     fileHeader.Size,
		ContentType:  contentType,
		UploadedById: uuid.NullUUID{UUID: user.ID, Valid: true},
	}

	if err := s.storage.SaveReader(file, fileHeader.Size, asset.Id, contentType, &filestorage.Metadata{
		UploadedBy: user.ID.String(),
	}); err != nil {
		return EErrorDefined(c, apierrors.ErrMediaUploadFailed)
	}

	if asset.IsImage() {
		if _, err := file.Seek(0, 0); err != nil {
			return EError(c, err)
		}
		thumb, size, thumbType, err := imageThumbnail(file, contentType)
		if err != nil {
			slog.Warn("Generate media thumbnail", "asset", asset.Id, "err", err)
		} else {
			thumbId := dao.GenUUID()
			if err := s.storage.SaveReader(thumb, int64(size), thumbId, thumbType, nil); err != nil {
				slog.Warn("Save media thumbnail", "asset", asset.Id, "err", err)
			} else {
				asset.ThumbnailId = uuid.NullUUID{UUID: thumbId, Valid: true}
			}
		}
	}

	if err := s.db.Create(&asset).Error; err != nil {
		return EError(c, err)
	}

	asset.UploadedBy = user
	return c.JSON(http.StatusCreated, asset.ToDTO())
}

// getMediaInfo возвращает метаданные медиафайла.
func (s *Services) getMediaInfo(c echo.Context) error {
	asset := c.(MediaContext).Asset
	return c.JSON(http.StatusOK, asset.ToDTO())
}

// deleteMedia удаляет медиафайл, если на него не ссылается контент.
func (s *Services) deleteMedia(c echo.Context) error {
	ctx := c.(MediaContext)
	asset := ctx.Asset

	if !ctx.User.IsSuperuser && (!asset.UploadedById.Valid || asset.UploadedById.UUID != ctx.User.ID) {
		return EErrorDefined(c, apierrors.ErrAdminRoleRequired)
	}

	ok, err := asset.CanBeDeleted(s.db)
	if err != nil {
		return EError(c, err)
	}
	if !ok {
		return EErrorDefined(c, apierrors.ErrMediaInUse)
	}

	if err := s.db.Delete(&asset).Error; err != nil {
		return EError(c, err)
	}

	return c.NoContent(http.StatusOK)
}

// getMediaFile отдает содержимое медиафайла. Публичный endpoint,
// используется страницами статей и миниатюрами медиатеки.
func (s *Services) getMediaFile(c echo.Context) error {
	assetId, err := uuid.FromString(c.Param("assetId"))
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}

	var asset dao.MediaAsset
	if err := s.db.Where("id = ? or thumbnail_id = ?", assetId, assetId).First(&asset).Error; err != nil {
		return c.NoContent(http.StatusNotFound)
	}

	reader, err := s.storage.LoadReader(assetId)
	if err != nil {
		return EError(c, err)
	}
	defer reader.Close()

	contentType := asset.ContentType
	if assetId != asset.Id {
		// Отдается миниатюра
		contentType = "image/jpeg"
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, reader)
}

func (s *Services) mediaUploadValidator(hook tusd.HookEvent) (tusd.HTTPResponse, tusd.FileInfoChanges, error) {
	fileName, fOk := hook.Upload.MetaData["file_name"]

	req := http.Request{Header: hook.HTTPRequest.Header}
	accessCookie, _ := req.Cookie("access_token")
	if accessCookie == nil {
		return tusd.HTTPResponse{}, tusd.FileInfoChanges{}, apierrors.ErrAccessTokenRequired.TusdError()
	}
	userId, err := getUserIdFromJWT(accessCookie.Value)
	if err != nil {
		return tusd.HTTPResponse{}, tusd.FileInfoChanges{}, apierrors.ErrGeneric.TusdError()
	}

	if !fOk {
		return tusd.HTTPResponse{}, tusd.FileInfoChanges{}, apierrors.ErrMediaFileRequired.TusdError()
	}

	if hook.Upload.Size > apierrors.MediaMaxSizeMB*1024*1024 {
		return tusd.HTTPResponse{}, tusd.FileInfoChanges{}, apierrors.ErrMediaTooLarge.WithFormattedMessage(apierrors.MediaMaxSizeMB).TusdError()
	}

	filteredMetadata := tusd.MetaData{
		"user_id":   userId,
		"file_name": fileName,
		"filetype":  hook.Upload.MetaData["file_type"], // Passed as content-type to minio
	}

	return tusd.HTTPResponse{}, tusd.FileInfoChanges{ID: dao.GenID(), MetaData: filteredMetadata}, nil
}

func (s *Services) mediaPostUploadHook(event tusd.HookEvent) {
	assetName, err := uuid.FromString(strings.Split(event.Upload.ID, "+")[0])
	if err != nil {
		slog.Error("Parse uploaded file id", "id", event.Upload.ID, "err", err)
		return
	}
	userId := event.Upload.MetaData["user_id"]
	fileName := event.Upload.MetaData["file_name"]
	contentType := event.Upload.MetaData["filetype"]

	var user dao.User
	if err := s.db.Where("id = ?", userId).First(&user).Error; err != nil {
		slog.Error("Find media upload user", "err", err)
		return
	}

	asset := dao.MediaAsset{
		Id:           assetName,
		CreatedAt:    time.Now(),
		Name:         fileName,
		FileSize:     event.Upload.Size,
		ContentType:  contentType,
		UploadedById: uuid.NullUUID{UUID: user.ID, Valid: true},
	}

	if asset.IsImage() {
		reader, err := s.storage.LoadReader(asset.Id)
		if err == nil {
			thumb, size, thumbType, err := imageThumbnail(reader, contentType)
			reader.Close()
			if err != nil {
				slog.Warn("Generate media thumbnail", "asset", asset.Id, "err", err)
			} else {
				thumbId := dao.GenUUID()
				if err := s.storage.SaveReader(thumb, int64(size), thumbId, thumbType, nil); err != nil {
					slog.Warn("Save media thumbnail", "asset", asset.Id, "err", err)
				} else {
					asset.ThumbnailId = uuid.NullUUID{UUID: thumbId, Valid: true}
				}
			}
		}
	}

	if err := s.db.Create(&asset).Error; err != nil {
		slog.Error("Save media info to db", "err", err)
		return
	}

	slog.Info("Media uploaded via TUS", "asset", fmt.Sprintf("%s (%s)", asset.Id, asset.Name))
}
