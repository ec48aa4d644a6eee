package sessions

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/growhub-it/growhubtips/internal/growhubtips/config"
)

func newTestManager(t *testing.T) *SessionsManager {
	t.Helper()
	cfg := &config.Config{SessionsDBPath: filepath.Join(t.TempDir(), "sessions.db")}
	sm := NewSessionsManager(cfg, time.Hour)
	t.Cleanup(sm.Close)
	return sm
}

func TestUnknownTokenNotBlacklisted(t *testing.T) {
	sm := newTestManager(t)

	revoked, err := sm.IsTokenBlacklisted([]byte("unknown"))
	if err != nil {
		t.Fatalf("IsTokenBlacklisted() error = %v", err)
	}
	if revoked {
		t.Error("unknown signature reported as revoked")
	}
}

func TestBlacklistTokenGracePeriod(t *testing.T) {
	sm := newTestManager(t)
	sig := []byte("signature-1")

	if err := sm.BlacklistToken(sig); err != nil {
		t.Fatalf("BlacklistToken() error = %v", err)
	}

	// Отзыв еще не вступил в силу, запросы в полете проходят
	revoked, err := sm.IsTokenBlacklisted(sig)
	if err != nil {
		t.Fatalf("IsTokenBlacklisted() error = %v", err)
	}
	if revoked {
		t.Error("token revoked before the grace period ended")
	}
}

func TestBlacklistTokenTakesEffect(t *testing.T) {
	sm := newTestManager(t)
	sm.delay = -time.Second

	sig := []byte("signature-2")
	if err := sm.BlacklistToken(sig); err != nil {
		t.Fatalf("BlacklistToken() error = %v", err)
	}

	revoked, err := sm.IsTokenBlacklisted(sig)
	if err != nil {
		t.Fatalf("IsTokenBlacklisted() error = %v", err)
	}
	if !revoked {
		t.Error("token not revoked after the grace period")
	}
}
