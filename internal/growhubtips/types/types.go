// Содержит определения различных типов данных, используемых в приложении.
// Включает типы для работы с санитайзированным HTML, полнотекстовым поиском
// Postgres и JSON URL-ами. Предоставляет методы для сериализации,
// десериализации и валидации данных.
//
// Основные возможности:
//   - Хранение HTML с санитайзацией при записи и чтении.
//   - Работа с tsvector для полнотекстового поиска.
//   - Работа с URL в JSON-ответах.
package types

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	policy "github.com/growhub-it/growhubtips/internal/growhubtips/redactor-policy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RedactorHTML type
type RedactorHTML struct {
	Body             string
	stripped         string
	AlreadySanitized bool
}

func (r RedactorHTML) Value() (driver.Value, error) {
	if !r.AlreadySanitized {
		return policy.ArticlePolicy.Sanitize(r.Body), nil
	}
	return r.Body, nil
}

func (r *RedactorHTML) Scan(value interface{}) error {
	if s, ok := value.(string); ok {
		r.Body = s
		return nil
	}
	return errors.New("unsupported type")
}

func (r RedactorHTML) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(r.Body); err != nil {
		return nil, err
	}

	return bytes.TrimSpace(buf.Bytes()), nil
}

func (r *RedactorHTML) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &r.Body); err != nil {
		return err
	}
	r.Body = policy.ArticlePolicy.Sanitize(r.Body)
	r.Body = RemoveInvisibleChars(r.Body)
	r.AlreadySanitized = true

	return nil
}

func (r *RedactorHTML) StripTags() string {
	if r.stripped == "" {
		r.stripped = policy.StripTagsPolicy.Sanitize(r.Body)
	}
	return r.stripped
}

func (r RedactorHTML) String() string {
	return r.Body
}

func (RedactorHTML) GormDataType() string {
	return "text"
}

func RemoveInvisibleChars(s string) string {
	invisible := []string{
		"\u200B",
		"\u200C",
		"\u200D",
		"\uFEFF",
	}

	for _, ch := range invisible {
		s = strings.ReplaceAll(s, ch, "")
	}
	return s
}

// TsVector Postgres tsvector type
type TsVector struct {
	Vector string
}

func (TsVector) GormDataType() string {
	return "tsvector"
}

func (ts TsVector) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	return clause.Expr{
		SQL:  "to_tsvector('russian', ?)",
		Vars: []interface{}{ts.Vector},
	}
}

func (ts *TsVector) Scan(v interface{}) error {
	if str, ok := v.(string); ok {
		*ts = TsVector{str}
		return nil
	}
	return errors.New("incorrect type of tsvector")
}

func (ts *TsVector) String() string {
	return ts.Vector
}

// JsonURL type
type JsonURL struct {
	Url *url.URL
}

func (u *JsonURL) MarshalJSON() ([]byte, error) {
	if u == nil || u.Url == nil {
		return []byte("null"), nil
	}
	return []byte("\"" + u.Url.String() + "\""), nil
}
