package config

import "testing"

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SITE_TITLE", "Сад и огород")
	t.Setenv("EMAIL_PORT", "2525")
	t.Setenv("DEMO", "true")
	t.Setenv("EMAIL_WORKERS", "не число")

	cfg := &Config{EmailWorkers: 5}
	loadFromEnv(cfg)

	if cfg.SiteTitle != "Сад и огород" {
		t.Errorf("SiteTitle = %q, want %q", cfg.SiteTitle, "Сад и огород")
	}
	if cfg.EmailPort != 2525 {
		t.Errorf("EmailPort = %d, want 2525", cfg.EmailPort)
	}
	if !cfg.Demo {
		t.Error("Demo = false, want true")
	}
	// Непарсящееся число оставляет значение по умолчанию
	if cfg.EmailWorkers != 5 {
		t.Errorf("EmailWorkers = %d, want default 5", cfg.EmailWorkers)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		field string
		value string
		want  string
	}{
		{"SecretKey", "supersecret", "s*********t"},
		{"EmailPassword", "ab", "**"},
		{"EmailPassword", "пароль123", "п*******3"},
		{"SiteTitle", "GrowHub", "GrowHub"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.field, tt.value); got != tt.want {
			t.Errorf("maskSecret(%q, %q) = %q, want %q", tt.field, tt.value, got, tt.want)
		}
	}
}
