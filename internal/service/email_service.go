package service

import (
	"context"
	"fmt"
	"html"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// sesAPI is the part of the SES client the service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client    sesAPI
	fromEmail string
	fromName  string
	appHost   string
	enabled   bool
	log       *zap.SugaredLogger
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service that logs and skips every send.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appHost string, log *zap.SugaredLogger) (*EmailService, error) {
	if fromEmail == "" {
		log.Warn("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, appHost: appHost, log: log}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Infow("Email service enabled", "from", fromEmail, "region", awsRegion)
	return newEmailService(sesv2.NewFromConfig(cfg), fromEmail, fromName, appHost, log), nil
}

func newEmailService(client sesAPI, fromEmail, fromName, appHost string, log *zap.SugaredLogger) *EmailService {
	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		appHost:   appHost,
		enabled:   true,
		log:       log,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendInvitationEmail invites an unregistered address to create an account
func (s *EmailService) SendInvitationEmail(ctx context.Context, toEmail, sentByName, infantName string) error {
	subject := "Get Started With Bably"
	sentBy := html.EscapeString(sentByName)
	infant := html.EscapeString(infantName)

	htmlBody := fmt.Sprintf(`<div style="text-align: center;">
	<h2>%s has invited you to join Bably</h2>
	<p>%s has shared access to %s profile</p>
	<p>follow the link below to create an account</p>
	<a href="%s">create an account</a>
</div>`, sentBy, sentBy, infant, s.appHost)

	textBody := fmt.Sprintf(`%s has invited you to join Bably

%s has shared access to %s profile.
Create an account: %s
`, sentByName, sentByName, infantName, s.appHost)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendPasswordResetEmail sends a reset link carrying token
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, toName, resetToken string) error {
	subject := "Reset your Bably password"
	resetLink := fmt.Sprintf("%s/reset?token=%s", s.appHost, url.QueryEscape(resetToken))

	htmlBody := fmt.Sprintf(`<div style="text-align: center;">
	<h1>Forgot your Password? We've got you covered.</h1>
	<p>Hi %s,</p>
	<h3>follow the link below to reset your password</h3>
	<a href="%s">reset password</a>
	<p>This link will expire in 1 hour.</p>
</div>`, html.EscapeString(toName), resetLink)

	textBody := fmt.Sprintf(`Hi %s,

Follow the link below to reset your Bably password:
%s

This link will expire in 1 hour.
`, toName, resetLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if !s.enabled {
		s.log.Infow("Skipping email send (service disabled)", "to", toEmail, "subject", subject)
		return nil
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	s.log.Infow("Email sent", "to", toEmail, "subject", subject, "message_id", aws.ToString(result.MessageId))
	return nil
}
