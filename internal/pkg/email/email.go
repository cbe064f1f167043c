package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"

	"github.com/qs3c/hatch_server/config"
)

// Sender is what services need from the mailer.
type Sender interface {
	SendVerificationCode(to, code string) error
	SendPaymentApproved(to, tierName string, days int) error
	SendPaymentRejected(to, notes string) error
}

type Service struct {
	client      *resend.Client
	from        string
	frontendURL string
	log         *zap.Logger
}

// NewService returns a Resend-backed mailer. Without an API key it only logs.
func NewService(cfg *config.EmailConfig, log *zap.Logger) *Service {
	s := &Service{
		from:        cfg.From,
		frontendURL: cfg.FrontendURL,
		log:         log.Named("email"),
	}
	if cfg.FromName != "" {
		s.from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	if cfg.ResendAPIKey != "" {
		s.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return s
}

var verificationTmpl = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #f97316;">Confirm your email</h2>
        <p>Use this code to finish creating your Hatch account:</p>
        <div style="background-color: #f3f4f6; padding: 15px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">{{.Code}}</div>
        <p>The code expires in 24 hours.</p>
        {{if .Link}}<p>Or open <a href="{{.Link}}">{{.Link}}</a></p>{{end}}
    </div>
</body>
</html>`))

var approvedTmpl = template.Must(template.New("approved").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #16a34a;">Payment approved</h2>
        <p>Your {{.Tier}} plan is active for the next {{.Days}} days.</p>
    </div>
</body>
</html>`))

var rejectedTmpl = template.Must(template.New("rejected").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #dc2626;">Payment not approved</h2>
        <p>We could not verify your payment.</p>
        {{if .Notes}}<p>Reviewer notes: {{.Notes}}</p>{{end}}
    </div>
</body>
</html>`))

func (s *Service) SendVerificationCode(to, code string) error {
	link := ""
	if s.frontendURL != "" {
		link = s.frontendURL + "/verify-email?code=" + code
	}
	html, err := render(verificationTmpl, map[string]string{"Code": code, "Link": link})
	if err != nil {
		return err
	}
	return s.send(to, "Confirm your Hatch account", html)
}

func (s *Service) SendPaymentApproved(to, tierName string, days int) error {
	html, err := render(approvedTmpl, map[string]interface{}{"Tier": tierName, "Days": days})
	if err != nil {
		return err
	}
	return s.send(to, "Your Hatch subscription is active", html)
}

func (s *Service) SendPaymentRejected(to, notes string) error {
	html, err := render(rejectedTmpl, map[string]string{"Notes": notes})
	if err != nil {
		return err
	}
	return s.send(to, "Your Hatch payment was not approved", html)
}

func (s *Service) send(to, subject, html string) error {
	if s.client == nil {
		s.log.Info("email delivery disabled, skipping", zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	resp, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Debug("email sent", zap.String("to", to), zap.String("id", resp.Id))
	return nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}
