package growhubtips

import (
	"testing"
	"time"
)

// TestLoginRateLimiter проверяет работу лимитера попыток входа
func TestLoginRateLimiter(t *testing.T) {
	// Максимум 3 попытки за 100ms
	limiter := NewLoginRateLimiter(3, 100*time.Millisecond)
	defer limiter.Stop()

	testIP := "192.168.1.1"

	for i := 0; i < 3; i++ {
		if !limiter.CheckAndRecord(testIP) {
			t.Errorf("Attempt %d should be allowed", i+1)
		}
	}

	if limiter.CheckAndRecord(testIP) {
		t.Error("4th attempt should be blocked")
	}

	// Ждем истечения временного окна
	time.Sleep(110 * time.Millisecond)

	if !limiter.CheckAndRecord(testIP) {
		t.Error("Attempt after window expiration should be allowed")
	}
}

// TestLoginRateLimiterMultipleIPs проверяет изоляцию между разными IP
func TestLoginRateLimiterMultipleIPs(t *testing.T) {
	limiter := NewLoginRateLimiter(2, 100*time.Millisecond)
	defer limiter.Stop()

	ip1 := "192.168.1.1"
	ip2 := "192.168.1.2"

	if !limiter.CheckAndRecord(ip1) {
		t.Error("IP1: 1st attempt should be allowed")
	}
	if !limiter.CheckAndRecord(ip1) {
		t.Error("IP1: 2nd attempt should be allowed")
	}
	if limiter.CheckAndRecord(ip1) {
		t.Error("IP1: 3rd attempt should be blocked")
	}

	// IP2 имеет свой независимый лимит
	if !limiter.CheckAndRecord(ip2) {
		t.Error("IP2: 1st attempt should be allowed")
	}
	if !limiter.CheckAndRecord(ip2) {
		t.Error("IP2: 2nd attempt should be allowed")
	}
	if limiter.CheckAndRecord(ip2) {
		t.Error("IP2: 3rd attempt should be blocked")
	}
}
