// Package ses delivers messages through the AWS SES v2 API, submitting
// the assembled message bytes verbatim so the MIME structure on the
// wire is identical to what the SMTP transport would send.
package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	mail "github.com/fyrelib/go-mail"
	"github.com/fyrelib/go-mail/message"
)

// SendEmailAPI is the interface for the SES v2 SendEmail operation.
// Used for testing with mock implementations.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Mailer is an SES delivery handler.
type Mailer struct {
	mail.Base
	client SendEmailAPI
}

// New builds an SES handler from cfg, loading AWS configuration from
// the environment and overriding region and credentials when set.
func New(cfg mail.Config) (mail.Mailer, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading aws config: %v", mail.ErrInvalidConfig, err)
	}

	return NewWithClient(cfg, sesv2.NewFromConfig(awsCfg)), nil
}

// NewWithClient builds an SES handler with a custom client, used for
// testing.
func NewWithClient(cfg mail.Config, client SendEmailAPI) *Mailer {
	return &Mailer{Base: mail.NewBase(cfg), client: client}
}

// Email composes an empty message bound to this handler.
func (s *Mailer) Email() *message.Message {
	return s.NewEmail(s)
}

// Send submits the assembled message as raw content. The envelope
// sender and destination come from the message itself; delivery
// failures are terminal, the caller decides whether to retry.
func (s *Mailer) Send(m *message.Message) error {
	if err := s.CheckRecipients(m); err != nil {
		return err
	}

	raw, err := m.String()
	if err != nil {
		return err
	}

	envelope := m.ReturnPath().FirstEmail()
	if envelope == "" {
		envelope = m.From().FirstEmail()
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(envelope),
		Destination: &types.Destination{
			ToAddresses:  m.To().Emails(),
			CcAddresses:  m.Cc().Emails(),
			BccAddresses: m.Bcc().Emails(),
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{
				Data: []byte(raw),
			},
		},
	}

	out, err := s.client.SendEmail(context.Background(), input)
	if err != nil {
		return fmt.Errorf("%w: %v", mail.ErrDeliveryFailed, err)
	}

	if out.MessageId != nil {
		s.Log().Debug().Str("ses_id", *out.MessageId).Msg("ses accepted")
	}
	return nil
}
