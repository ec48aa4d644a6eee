// Отправка email-уведомлений пользователям: пароль новой учетной записи, сброс пароля.
//
// Основные возможности:
//   - Отправка писем через пул воркеров с общим каналом.
//   - Персонализация содержимого через встроенные HTML-шаблоны.
//   - Альтернативная текстовая версия письма для почтовых клиентов без HTML.
//   - Логирование ошибок отправки.
package notifications

import (
	"bytes"
	"embed"
	"fmt"
	htmlTemplate "html/template"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/gomail.v2"

	"github.com/growhub-it/growhubtips/internal/growhubtips/config"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

var htmlStripPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var minifier *minify.M = minify.New()

//go:embed templates/*
var defaultTemplates embed.FS

type EmailService struct {
	d         *gomail.Dialer
	cfg       *config.Config
	templates *htmlTemplate.Template
	disabled  bool

	emailChan chan mail
	eg        errgroup.Group
}

type mail struct {
	To          string
	Subject     string
	Content     string
	TextContent string
}

func NewEmailService(cfg *config.Config) (*EmailService, error) {
	minifier.AddFunc("text/html", html.Minify)

	templates, err := htmlTemplate.ParseFS(defaultTemplates, "templates/*.html")
	if err != nil {
		return nil, err
	}

	es := &EmailService{
		d:         gomail.NewDialer(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPassword),
		cfg:       cfg,
		templates: templates,
		disabled:  cfg.EmailDisabled,
		emailChan: make(chan mail),
	}
	if cfg.EmailDisabled {
		slog.Warn("Email notifications disabled")
	}

	for i := 0; i < cfg.EmailWorkers; i++ {
		es.eg.Go(func() error {
			return es.worker(es.emailChan)
		})
	}

	return es, nil
}

func (es *EmailService) Stop() {
	slog.Info("Closing email workers")
	es.disabled = true
	close(es.emailChan)

	if err := es.eg.Wait(); err != nil {
		slog.Error("Worker err:", "err", err)
	}

	slog.Info("Email workers successfully stopped")
}

func (es *EmailService) sendEmail(e mail) error {
	m := gomail.NewMessage()
	m.SetHeader("From", es.cfg.EmailFrom)
	m.SetHeader("To", e.To)
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/plain", e.TextContent)
	m.AddAlternative("text/html", e.Content)

	return es.d.DialAndSend(m)
}

func (es *EmailService) Send(e mail) error {
	if es.disabled {
		return fmt.Errorf("email service stop")
	}
	es.emailChan <- e
	return nil
}

func (es *EmailService) worker(emailChan <-chan mail) error {
	for e := range emailChan {
		if err := es.sendEmail(e); err != nil {
			slog.Error("email send err", "to", e.To, "err", err)
		}
	}
	return nil
}

func (es *EmailService) getHTML(title string, body string) (string, error) {
	var buf bytes.Buffer
	if err := es.templates.ExecuteTemplate(&buf, "body.html", struct {
		Title     string
		SiteTitle string
		Body      htmlTemplate.HTML
		CreatedAt time.Time
	}{
		Title:     title,
		SiteTitle: es.cfg.SiteTitle,
		Body:      htmlTemplate.HTML(body),
		CreatedAt: time.Now(),
	}); err != nil {
		return "", err
	}

	content, err := minifier.String("text/html", buf.String())
	if err != nil {
		return buf.String(), nil
	}
	return content, nil
}

// NewUserPasswordNotify отправляет новому пользователю сгенерированный пароль.
func (es *EmailService) NewUserPasswordNotify(user dao.User, password string) error {
	subject := fmt.Sprintf("Пароль для входа в %s", es.cfg.SiteTitle)

	var buf bytes.Buffer
	if err := es.templates.ExecuteTemplate(&buf, "new_user_password.html", struct {
		SignInUrl *url.URL
		Password  string
	}{
		SignInUrl: es.cfg.WebURL.ResolveReference(&url.URL{Path: "/signin/"}),
		Password:  password,
	}); err != nil {
		return err
	}

	content, err := es.getHTML("Добро пожаловать", buf.String())
	if err != nil {
		return err
	}

	textContent := htmlStripPolicy.Sanitize(content)

	return es.Send(mail{
		To:          user.Email,
		Subject:     subject,
		Content:     content,
		TextContent: textContent,
	})
}

// PasswordResetNotify отправляет пользователю новый пароль после сброса.
func (es *EmailService) PasswordResetNotify(user dao.User, password string) error {
	subject := "Сброс пароля"

	var buf bytes.Buffer
	if err := es.templates.ExecuteTemplate(&buf, "password_reset.html", struct {
		Password string
	}{
		Password: password,
	}); err != nil {
		return err
	}

	content, err := es.getHTML("Изменение пароля для входа", buf.String())
	if err != nil {
		return err
	}

	textContent := htmlStripPolicy.Sanitize(content)

	return es.Send(mail{
		To:          user.Email,
		Subject:     subject,
		Content:     content,
		TextContent: textContent,
	})
}
