// Валидация входных данных API. Содержит валидаторы для адресов публикаций,
// имен пользователей и заголовков. Использует библиотеку go-playground/validator.
//
// Основные возможности:
//   - Валидация полей запросов с использованием предопределенных валидаторов.
//   - Регулярные выражения для проверки формата данных.
package growhubtips

import (
	"regexp"
	"unicode/utf8"

	"github.com/go-playground/validator"
)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	err := v.RegisterValidation("slug", slugValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("username", usernameValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("postTitle", postTitleValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("fullName", userFullNameValidator)
	if err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		_, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		return err
	}
	return nil
}

func slugValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	if !isValidLatinLowerDigitHyphen(value) {
		return false
	}
	return lenStr >= 3 && lenStr <= 100
}

func usernameValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	if !isValidLatinWithSymbols(value) {
		return false
	}
	return lenStr >= 1 && lenStr <= 100
}

func postTitleValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	if !isValidLatinCyrillicDigitWithSymbol(value) {
		return false
	}
	return lenStr >= 1 && lenStr <= 200
}

func userFullNameValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	if !isValidLatinCyrillicHyphen(value) {
		return false
	}
	return lenStr >= 1 && lenStr <= 100
}

// Validate
func isValidLatinCyrillicDigitWithSymbol(str string) bool {
	pt := `^[A-Za-zА-Яа-яёЁ0-9 ._\/\-\\!#\$%&'\"\(\)\*\+,\-.:;№<=>?@\[\\\]\^_\{\|\}~]+$`
	re := regexp.MustCompile(pt)
	return re.MatchString(str)
}

func isValidLatinCyrillicHyphen(str string) bool {
	pt := `^[A-Za-zА-Яа-яёЁ-]+$`
	re := regexp.MustCompile(pt)
	return re.MatchString(str)
}

func isValidLatinWithSymbols(str string) bool {
	pt := `^[A-Za-z0-9._\/\-\\]+$`
	re := regexp.MustCompile(pt)
	return re.MatchString(str)
}

func isValidLatinLowerDigitHyphen(str string) bool {
	pt := `^[a-z0-9-]+$`
	re := regexp.MustCompile(pt)
	return re.MatchString(str)
}
