package dao

import (
	"net/url"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"github.com/growhub-it/growhubtips/internal/growhubtips/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupUsersDB(t *testing.T) *gorm.DB {
	webURL, err := url.Parse("https://tips.growhub.it")
	require.NoError(t, err)
	Config = &config.Config{WebURL: webURL}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&User{}, &SessionsReset{}))

	return db
}

func TestUserAvatarURL(t *testing.T) {
	db := setupUsersDB(t)

	avatarId := GenUUID()
	user := User{
		Email:    "gardener@growhub.it",
		AvatarId: uuid.NullUUID{UUID: avatarId, Valid: true},
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)

	var loaded User
	require.NoError(t, db.Where("email = ?", "gardener@growhub.it").First(&loaded).Error)
	assert.Equal(t, "https://tips.growhub.it/api/media/"+avatarId.String()+"/", loaded.Avatar)

	noAvatar := User{Email: "novice@growhub.it", IsActive: true}
	require.NoError(t, db.Create(&noAvatar).Error)

	loaded = User{}
	require.NoError(t, db.Where("email = ?", "novice@growhub.it").First(&loaded).Error)
	assert.Equal(t, "", loaded.Avatar)
}

func TestResetUserSessions(t *testing.T) {
	db := setupUsersDB(t)

	user := User{Email: "gardener@growhub.it", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, ResetUserSessions(db, &user))
	require.NoError(t, ResetUserSessions(db, &user))

	var resets []SessionsReset
	require.NoError(t, db.Where("user_id = ?", user.ID.String()).Find(&resets).Error)
	assert.Len(t, resets, 2)
}

func TestUserGetName(t *testing.T) {
	user := User{Email: "gardener@growhub.it"}
	assert.Equal(t, "gardener@growhub.it", user.GetName())

	user.FirstName = "Иван"
	user.LastName = "Садовод"
	assert.Equal(t, "Иван Садовод", user.GetName())
}
