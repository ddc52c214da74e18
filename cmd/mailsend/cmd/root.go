package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	mail "github.com/fyrelib/go-mail"
	"github.com/fyrelib/go-mail/debug"
	"github.com/fyrelib/go-mail/message"
	"github.com/fyrelib/go-mail/sendmail"
	"github.com/fyrelib/go-mail/ses"
	"github.com/fyrelib/go-mail/smtp"
)

var (
	configPath string
	handler    string
	verbose    bool

	from        string
	to          []string
	cc          []string
	bcc         []string
	subject     string
	textBody    string
	htmlBody    string
	attachments []string
)

var rootCmd = &cobra.Command{
	Use:   "mailsend",
	Short: "Compose and send an email through a configured handler",
	RunE:  RunSend,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "mail.yaml", "path to a YAML file of named handler configurations")
	rootCmd.Flags().StringVar(&handler, "handler", mail.DefaultHandler, "configuration name to send through")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log protocol activity")

	rootCmd.Flags().StringVar(&from, "from", "", "sender address")
	rootCmd.Flags().StringSliceVar(&to, "to", nil, "recipient address (repeatable)")
	rootCmd.Flags().StringSliceVar(&cc, "cc", nil, "carbon copy address (repeatable)")
	rootCmd.Flags().StringSliceVar(&bcc, "bcc", nil, "blind carbon copy address (repeatable)")
	rootCmd.Flags().StringVar(&subject, "subject", "", "message subject")
	rootCmd.Flags().StringVar(&textBody, "text", "", "plain text body")
	rootCmd.Flags().StringVar(&htmlBody, "html", "", "HTML body")
	rootCmd.Flags().StringSliceVar(&attachments, "attach", nil, "file to attach (repeatable)")
}

func Execute() error {
	return rootCmd.Execute()
}

func RunSend(_ *cobra.Command, _ []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
	if verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	configs, err := mail.LoadConfigFile(configPath)
	if err != nil {
		return err
	}
	for key, cfg := range configs {
		cfg.Logger = &logger
		configs[key] = cfg
	}

	mgr := mail.NewManager()
	for tag, ctor := range map[string]mail.Constructor{
		"smtp":     smtp.New,
		"sendmail": sendmail.New,
		"ses":      ses.New,
		"debug":    debug.New,
	} {
		if err := mgr.Register(tag, ctor); err != nil {
			return err
		}
	}
	if err := mgr.Configure(configs); err != nil {
		return err
	}

	mailer, err := mgr.Use(handler)
	if err != nil {
		return err
	}

	m := mailer.Email().
		SetSubject(subject).
		SetBodyText(textBody).
		SetBodyHTML(htmlBody)

	if from != "" {
		m.SetFrom(from, "")
	}
	for _, addr := range to {
		m.AddTo(addr, "")
	}
	for _, addr := range cc {
		m.AddCc(addr, "")
	}
	for _, addr := range bcc {
		m.AddBcc(addr, "")
	}

	switch {
	case textBody != "" && htmlBody != "":
		m.SetFormat(message.FormatBoth)
	case htmlBody != "":
		m.SetFormat(message.FormatHTML)
	}

	for _, path := range attachments {
		m.AddAttachment(message.Attachment{
			Name: filepath.Base(path),
			File: path,
		})
	}

	if m.Recipients().Len() == 0 {
		return fmt.Errorf("no valid recipients in %s", strings.Join(to, ", "))
	}

	if err := m.Send(); err != nil {
		return err
	}

	logger.Info().
		Str("handler", handler).
		Int("recipients", m.Recipients().Len()).
		Msg("message sent")
	return nil
}
