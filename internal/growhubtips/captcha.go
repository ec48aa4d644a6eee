// Проверка решений altcha-капчи на формах входа и сброса пароля.
//
// Основные возможности:
//   - Верификация решения по HMAC-ключу сервера.
//   - Одноразовость подписи: повторная отправка решенной капчи отклоняется.
//   - Метрика повторно предъявленных подписей.
package growhubtips

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/altcha-org/altcha-lib-go"
	"github.com/prometheus/client_golang/prometheus"
)

var CaptchaService = newCaptchaGuard()

const AltchaHMACKey = "hj2kd9qplmv83nrty54wzxc1bfge67ausi0oqkdnw-e"

// Срок жизни выданного испытания.
var AltchaExpires = time.Hour

// captchaGuard запоминает подписи уже принятых решений. Память о подписях
// сбрасывается раз в сутки, это заведомо дольше срока жизни испытания.
type captchaGuard struct {
	mu   sync.Mutex
	seen map[string]struct{}

	replayedCounter prometheus.Counter
}

func newCaptchaGuard() *captchaGuard {
	g := &captchaGuard{
		seen: make(map[string]struct{}),
		replayedCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "captcha_replayed_signatures_total",
			Help: "Total count of already seen captcha signatures in requests",
		}),
	}
	if err := prometheus.Register(g.replayedCounter); err != nil {
		slog.Error("Register captcha collector", "err", err)
	}

	go func() {
		for range time.Tick(24 * time.Hour) {
			slog.Info("Clear captcha signatures")
			g.mu.Lock()
			clear(g.seen)
			g.mu.Unlock()
		}
	}()

	return g
}

// Validate проверяет решение капчи и помечает его подпись использованной.
// Повторное предъявление той же подписи отклоняется и попадает в метрику.
func (g *captchaGuard) Validate(payload string) bool {
	if cfg.CaptchaDisabled {
		return true
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		slog.Error("Decode altcha payload", "err", err)
		return false
	}

	var solution altcha.Payload
	if err := json.Unmarshal(decoded, &solution); err != nil {
		slog.Error("Unmarshal altcha payload", "err", err)
		return false
	}

	verified, err := altcha.VerifySolution(solution, AltchaHMACKey, true)
	if err != nil || !verified {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[solution.Signature]; ok {
		g.replayedCounter.Inc()
		return false
	}
	g.seen[solution.Signature] = struct{}{}

	return true
}
