// Пакет содержит определения ошибок, используемых в приложении GrowHub Tips для обработки различных ситуаций, возникающих при работе с базой данных, хранилищем медиафайлов и пользовательским интерфейсом. Каждая ошибка имеет код, статус HTTP и описание, что позволяет удобно обрабатывать исключения и предоставлять информативные сообщения пользователю.
//
// Основные возможности:
//   - Определение различных типов ошибок, связанных с авторизацией, сессиями, публикациями, страницами, медиатекой и редактором.
//   - Предоставление кодов ошибок, соответствующих кодам HTTP статусов.
//   - Функция для форматирования сообщений об ошибках с использованием аргументов.
package apierrors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	tusd "github.com/tus/tusd/v2/pkg/handler"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

func (e DefinedError) TusdError() tusd.Error {
	b, _ := json.Marshal(e)
	return tusd.Error{
		HTTPResponse: tusd.HTTPResponse{
			StatusCode: e.StatusCode,
			Body:       string(b),
			Header: tusd.HTTPHeader{
				"Content-Type": "application/json",
			},
		},
	}
}

const (
	MediaMaxSizeMB = 100
)

var (
	// 1*** - auth errors
	ErrFailedLogin              = DefinedError{Code: 1001, StatusCode: http.StatusUnauthorized, Err: "invalid credentials", RuErr: "Неправильный email или пароль"}
	ErrCaptchaFail              = DefinedError{Code: 1002, StatusCode: http.StatusUnauthorized, Err: "invalid captcha", RuErr: "Капча введена неверно"}
	ErrLoginCredentialsRequired = DefinedError{Code: 1003, StatusCode: http.StatusUnauthorized, Err: "both email and password are required", RuErr: "Поля email и пароль не могут быть пустыми"}
	ErrSignupDisabled           = DefinedError{Code: 1004, StatusCode: http.StatusForbidden, Err: "sign up disabled", RuErr: "Регистрация отключена администратором"}
	ErrAccessTokenRequired      = DefinedError{Code: 1005, StatusCode: http.StatusUnauthorized, Err: "access token is required", RuErr: "Требуется токен доступа"}
	ErrUserAlreadyExist         = DefinedError{Code: 1006, StatusCode: http.StatusConflict, Err: "user already exist", RuErr: "Пользователь с указанным email уже зарегистрирован в системе"}
	ErrNewUserMailFailed        = DefinedError{Code: 1007, StatusCode: http.StatusBadRequest, Err: "failed to deliver email with password to new user", RuErr: "Не удалось отправить пароль на указанную почту. Проверьте корректность указанного адреса"}
	ErrUserNotFound             = DefinedError{Code: 1008, StatusCode: http.StatusNotFound, Err: "user not found", RuErr: "Пользователь не найден"}
	ErrAdminRoleRequired        = DefinedError{Code: 1009, StatusCode: http.StatusForbidden, Err: "admin role is required", RuErr: "Для действия необходима роль администратора"}
	ErrUserDeactivated          = DefinedError{Code: 1010, StatusCode: http.StatusUnauthorized, Err: "user is deactivated", RuErr: "Учетная запись отключена"}
	ErrInvalidEmail             = DefinedError{Code: 1011, StatusCode: http.StatusBadRequest, Err: "invalid email", RuErr: "Некорректный email"}
	ErrLoginTriesExceed         = DefinedError{Code: 1012, StatusCode: http.StatusTooManyRequests, Err: "too many login attempts", RuErr: "Слишком много попыток входа. Попробуйте позже"}

	// 11** - session errors
	ErrRefreshTokenRequired = DefinedError{Code: 1101, StatusCode: http.StatusUnauthorized, Err: "refresh token is required", RuErr: "Требуется токен обновления"}
	ErrTokenExpired         = DefinedError{Code: 1102, StatusCode: http.StatusUnauthorized, Err: "token expired", RuErr: "Срок действия токена истек"}
	ErrTokenInvalid         = DefinedError{Code: 1103, StatusCode: http.StatusUnauthorized, Err: "invalid token", RuErr: "Неверный токен"}
	ErrSessionReset         = DefinedError{Code: 1104, StatusCode: http.StatusUnauthorized, Err: "user session reset", RuErr: "Пользовательская сессия сброшена"}

	// 2*** - post errors
	ErrPostNotFound       = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "post not found", RuErr: "Публикация не найдена"}
	ErrPostSlugConflict   = DefinedError{Code: 2002, StatusCode: http.StatusConflict, Err: "post with that slug already exists", RuErr: "Публикация с таким адресом уже существует"}
	ErrPostTitleRequired  = DefinedError{Code: 2003, StatusCode: http.StatusBadRequest, Err: "post must have a title", RuErr: "Поле Заголовок не может быть пустым"}
	ErrForbiddenSlug      = DefinedError{Code: 2004, StatusCode: http.StatusBadRequest, Err: "forbidden slug", RuErr: "Адрес содержит недопустимые символы"}
	ErrPostNotYours       = DefinedError{Code: 2005, StatusCode: http.StatusForbidden, Err: "you are not the author of this post", RuErr: "Вы не являетесь автором этой публикации"}
	ErrPublishEmptyPost   = DefinedError{Code: 2006, StatusCode: http.StatusBadRequest, Err: "cannot publish post without content", RuErr: "Нельзя опубликовать пустую публикацию"}
	ErrPostAlreadyDeleted = DefinedError{Code: 2007, StatusCode: http.StatusGone, Err: "post already deleted", RuErr: "Публикация уже удалена"}

	// 3*** - page errors
	ErrPageNotFound     = DefinedError{Code: 3001, StatusCode: http.StatusNotFound, Err: "page not found", RuErr: "Страница не найдена"}
	ErrPageSlugConflict = DefinedError{Code: 3002, StatusCode: http.StatusConflict, Err: "page with that slug already exists", RuErr: "Страница с таким адресом уже существует"}

	// 4*** - media errors
	ErrMediaNotFound     = DefinedError{Code: 4001, StatusCode: http.StatusNotFound, Err: "media asset not found", RuErr: "Медиафайл не найден"}
	ErrMediaTooLarge     = DefinedError{Code: 4002, StatusCode: http.StatusRequestEntityTooLarge, Err: "media asset is bigger than %dMB", RuErr: "Размер медиафайла превышает %dМБ"}
	ErrMediaUploadFailed = DefinedError{Code: 4003, StatusCode: http.StatusInternalServerError, Err: "media asset upload failed", RuErr: "Не удалось загрузить медиафайл"}
	ErrMediaInUse        = DefinedError{Code: 4004, StatusCode: http.StatusConflict, Err: "media asset is referenced by published content", RuErr: "Медиафайл используется в опубликованном контенте"}
	ErrMediaFileRequired = DefinedError{Code: 4005, StatusCode: http.StatusBadRequest, Err: "file is required", RuErr: "Файл не передан"}
	ErrMediaNotAnImage   = DefinedError{Code: 4006, StatusCode: http.StatusBadRequest, Err: "media asset is not an image", RuErr: "Медиафайл не является изображением"}

	// 5*** - editor errors
	ErrDocumentInvalid  = DefinedError{Code: 5001, StatusCode: http.StatusBadRequest, Err: "document JSON is invalid", RuErr: "Некорректный документ редактора"}
	ErrDraftNotFound    = DefinedError{Code: 5002, StatusCode: http.StatusNotFound, Err: "draft not found", RuErr: "Черновик не найден"}
	ErrUnknownBlockType = DefinedError{Code: 5003, StatusCode: http.StatusBadRequest, Err: "unknown block type", RuErr: "Неизвестный тип блока"}

	// 9*** - generic errors
	ErrGeneric        = DefinedError{Code: 9001, StatusCode: http.StatusInternalServerError, Err: "something went wrong", RuErr: "Что-то пошло не так. Повторите попытку позже"}
	ErrBadRequest     = DefinedError{Code: 9002, StatusCode: http.StatusBadRequest, Err: "bad request", RuErr: "Некорректный запрос"}
	ErrNotImplemented = DefinedError{Code: 9003, StatusCode: http.StatusNotImplemented, Err: "not implemented", RuErr: "Функциональность не реализована"}
	ErrEntityToLarge  = DefinedError{Code: 9004, StatusCode: http.StatusRequestEntityTooLarge, Err: "request entity too large", RuErr: "Размер запроса превышает допустимый"}
	ErrDemo           = DefinedError{Code: 9005, StatusCode: http.StatusForbidden, Err: "action unavailable in demo mode", RuErr: "Действие недоступно в демо-режиме"}
)

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.RuErr = strings.Replace(e.RuErr, "%s", "", -1)
	}
	return e
}
