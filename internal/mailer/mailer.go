package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/A3toros/tutorcat-auth/config"
	"github.com/A3toros/tutorcat-auth/internal/auth/domain"
)

// SMTPMailer delivers one-time codes over SMTP. It is the only email
// surface the auth core has; everything else about mail (bounce
// handling, branding) lives outside this service.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTimeout(30 * time.Second),
	}

	if cfg.SMTPUsername != "" && cfg.SMTPPassword != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	if !cfg.IsProduction() {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.SMTPFrom}, nil
}

func (m *SMTPMailer) SendOtp(ctx context.Context, recipient string, purpose domain.OtpPurpose, code string) error {
	subject, body := otpTemplate(purpose, code)

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(recipient); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return m.client.DialAndSendWithContext(ctx, msg)
}

func otpTemplate(purpose domain.OtpPurpose, code string) (string, string) {
	switch purpose {
	case domain.OtpPurposeSignup:
		return "Verify your email",
			fmt.Sprintf("Your Tutorcat verification code is %s. It expires in 5 minutes.", code)
	case domain.OtpPurposePasswordReset:
		return "Reset your password",
			fmt.Sprintf("Your Tutorcat password reset code is %s. It expires in 10 minutes.", code)
	default:
		return "Your login code",
			fmt.Sprintf("Your Tutorcat login code is %s. It expires in 10 minutes.", code)
	}
}
