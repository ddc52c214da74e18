package mail

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config carries the settings for one delivery handler. Most fields only
// matter to particular handlers; unused fields are ignored. The zero
// value plus defaults is a plaintext SMTP connection to 127.0.0.1:465.
type Config struct {
	// Handler names the registered constructor to build.
	Handler string `yaml:"handler"`

	// Host and Port locate the SMTP server.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Username and Password enable AUTH LOGIN when Auth is set.
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Auth     bool   `yaml:"auth"`

	// TLS upgrades the connection with STARTTLS after the greeting.
	TLS bool `yaml:"tls"`

	// DSN requests delivery status notifications for each recipient.
	DSN bool `yaml:"dsn"`

	// KeepAlive holds the connection open between sends.
	KeepAlive bool `yaml:"keep_alive"`

	// Charset is the wire charset of composed messages. AppCharset is
	// the charset message content is supplied in.
	Charset    string `yaml:"charset"`
	AppCharset string `yaml:"app_charset"`

	// Client is the hostname presented in HELO/EHLO and Message-ID.
	// Defaults to os.Hostname.
	Client string `yaml:"client"`

	// SES credentials.
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`

	// Logger receives handler debug output. Nil disables logging.
	Logger *zerolog.Logger `yaml:"-"`
}

// withDefaults fills unset fields with their documented defaults.
func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 465
	}
	if c.Charset == "" {
		c.Charset = "utf-8"
	}
	if c.AppCharset == "" {
		c.AppCharset = "utf-8"
	}
	return c
}

// Log returns the configured logger, or a disabled one.
func (c Config) Log() zerolog.Logger {
	if c.Logger == nil {
		return zerolog.Nop()
	}
	return *c.Logger
}

// LoadConfigFile reads a yaml mapping of configuration name to Config.
func LoadConfigFile(path string) (map[string]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a yaml mapping of configuration name to Config.
func ParseConfig(data []byte) (map[string]Config, error) {
	configs := map[string]Config{}
	if err := yaml.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return configs, nil
}
