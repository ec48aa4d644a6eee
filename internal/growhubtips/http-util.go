// Вспомогательные функции HTTP-слоя.
package growhubtips

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// nullUUID разбирает строку в uuid.NullUUID. Пустая или некорректная
// строка дает невалидное значение.
func nullUUID(s string) uuid.NullUUID {
	u, err := uuid.FromString(s)
	if err != nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: u, Valid: true}
}

// isUniqueViolation сообщает, нарушает ли ошибка ограничение уникальности.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key value")
}

func getUserIdFromJWT(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", errors.New("malformed token")
	}
	d, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", err
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(d, &payload); err != nil {
		return "", err
	}
	id, ok := payload["user_id"].(string)
	if !ok {
		return "", errors.New("no user_id claim")
	}
	return id, nil
}
