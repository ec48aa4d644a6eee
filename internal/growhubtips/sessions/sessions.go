// Черный список подписей refresh-токенов на BoltDB.
//
// Основные возможности:
//   - Отзыв refresh-токена по его подписи при выходе из аккаунта.
//   - Отзыв вступает в силу с задержкой, запросы в полете не ломаются.
//   - Периодическая чистка записей, переживших срок жизни токена.
package sessions

import (
	"encoding/binary"
	"log/slog"
	"os"
	"time"

	"github.com/boltdb/bolt"
	"github.com/growhub-it/growhubtips/internal/growhubtips/config"
)

const revokedBucket = "revoked_tokens"

// Задержка вступления отзыва в силу.
const revokeDelay = time.Minute

type SessionsManager struct {
	db    *bolt.DB
	ttl   time.Duration
	delay time.Duration
}

func NewSessionsManager(cfg *config.Config, sessionTTL time.Duration) *SessionsManager {
	if cfg.SessionsDBPath == "" {
		cfg.SessionsDBPath = "sessions.db"
	}

	db, err := bolt.Open(cfg.SessionsDBPath, 0644, nil)
	if err != nil {
		slog.Error("Open sessions db", "err", err)
		os.Exit(1)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(revokedBucket))
		return err
	}); err != nil {
		slog.Error("Create revoked tokens bucket", "err", err)
		os.Exit(1)
	}

	sm := &SessionsManager{db: db, ttl: sessionTTL, delay: revokeDelay}

	go sm.sweepLoop()

	return sm
}

// BlacklistToken отзывает токен по его подписи. Отзыв вступает в силу
// через delay, чтобы не оборвать уже отправленные запросы этой сессии.
func (sm *SessionsManager) BlacklistToken(signature []byte) error {
	activeAt := time.Now().Add(sm.delay)
	return sm.db.Update(func(tx *bolt.Tx) error {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(activeAt.Unix()))
		return tx.Bucket([]byte(revokedBucket)).Put(signature, buf)
	})
}

// IsTokenBlacklisted сообщает, отозван ли токен с данной подписью.
func (sm *SessionsManager) IsTokenBlacklisted(signature []byte) (bool, error) {
	var revoked bool
	err := sm.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(revokedBucket)).Get(signature)
		if raw == nil {
			return nil
		}
		activeAt := time.Unix(int64(binary.BigEndian.Uint64(raw)), 0)
		revoked = time.Now().After(activeAt)
		return nil
	})
	return revoked, err
}

func (sm *SessionsManager) Close() {
	sm.db.Close()
}

// sweepLoop раз в минуту удаляет записи, отозванные дольше срока жизни
// токена назад: такой токен уже невалиден сам по себе.
func (sm *SessionsManager) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	for range ticker.C {
		err := sm.db.Update(func(tx *bolt.Tx) error {
			c := tx.Bucket([]byte(revokedBucket)).Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				activeAt := time.Unix(int64(binary.BigEndian.Uint64(v)), 0)
				if time.Since(activeAt) > sm.ttl {
					if err := c.Delete(); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			slog.Warn("Sweep revoked tokens", "err", err)
		}
	}
}
