// Ограничение частоты попыток входа для защиты от перебора паролей.
// Лимитер отслеживает попытки аутентификации с каждого IP адреса и
// блокирует дальнейшие попытки при превышении лимита в окне.
package growhubtips

import (
	"sync"
	"time"
)

// LoginRateLimiter ограничивает частоту попыток входа по IP адресу
type LoginRateLimiter struct {
	// attempts - map IP адреса → список timestamp попыток
	attempts map[string][]time.Time

	mu sync.Mutex

	// maxAttempts - максимальное количество попыток в течение window
	maxAttempts int

	// window - временное окно для подсчета попыток
	window time.Duration

	stopCleanup chan struct{}
}

// NewLoginRateLimiter создает лимитер попыток входа.
// maxAttempts - максимальное количество попыток (например, 10)
// window - временное окно (например, 1 минута)
func NewLoginRateLimiter(maxAttempts int, window time.Duration) *LoginRateLimiter {
	limiter := &LoginRateLimiter{
		attempts:    make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
		stopCleanup: make(chan struct{}),
	}

	go limiter.startCleanup()

	return limiter
}

// CheckAndRecord проверяет, не превышен ли лимит попыток для указанного IP,
// и записывает новую попытку.
// Возвращает true, если попытка разрешена, false - если лимит превышен.
func (rl *LoginRateLimiter) CheckAndRecord(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoffTime := now.Add(-rl.window)

	validAttempts := []time.Time{}
	for _, attemptTime := range rl.attempts[ip] {
		if attemptTime.After(cutoffTime) {
			validAttempts = append(validAttempts, attemptTime)
		}
	}

	if len(validAttempts) >= rl.maxAttempts {
		return false
	}

	validAttempts = append(validAttempts, now)
	rl.attempts[ip] = validAttempts

	return true
}

func (rl *LoginRateLimiter) startCleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup удаляет старые записи из map для освобождения памяти
func (rl *LoginRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoffTime := time.Now().Add(-2 * rl.window)

	for ip, attempts := range rl.attempts {
		validAttempts := []time.Time{}
		for _, attemptTime := range attempts {
			if attemptTime.After(cutoffTime) {
				validAttempts = append(validAttempts, attemptTime)
			}
		}

		if len(validAttempts) == 0 {
			delete(rl.attempts, ip)
		} else {
			rl.attempts[ip] = validAttempts
		}
	}
}

// Stop останавливает фоновую горутину очистки
func (rl *LoginRateLimiter) Stop() {
	close(rl.stopCleanup)
}
