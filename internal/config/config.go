// Package config loads the portal services configuration from environment
// variables, with .env file support for development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// Config carries the configuration for all portal services. Sub-structs
// group one concern each so services receive only their own section.
type Config struct {
	Server  ServerConfig
	UniFi   UniFiConfig
	Email   EmailConfig
	Printer PrinterConfig
}

// ServerConfig holds the HTTP gateway settings.
type ServerConfig struct {
	ListenAddr  string
	CORSOrigins []string
	LogLevel    string // debug, info, warn, error
	LogFormat   string // text or json
}

// UniFiConfig holds the controller connection settings. An empty password
// leaves the controller integration switched off; the gateway still
// serves the other services.
type UniFiConfig struct {
	ControllerURL      string
	Username           string
	Password           string
	Site               string
	VerifyTLS          bool
	RateLimitPerMinute int
}

// EmailConfig holds delivery settings for the configured provider. SMTP
// fields apply when Provider is "smtp", ResendAPIKey when it is "resend".
type EmailConfig struct {
	Provider              string
	SMTPHost              string
	SMTPPort              int
	SMTPUser              string
	SMTPPassword          string
	SMTPUseTLS            bool
	SMTPUseSSL            bool
	ResendAPIKey          string
	FromEmail             string
	FromName              string
	QueueSize             int
	CampaignRatePerSecond int
}

// PrinterConfig holds the printer endpoints. ReceiptAddr and LabelAddr
// are ESC/POS raw TCP endpoints; CUPSPrinter is the queue name used for
// A4 jobs. An empty LabelAddr leaves label printing switched off.
type PrinterConfig struct {
	ReceiptAddr  string
	ReceiptWidth int
	LabelAddr    string
	CUPSPrinter  string
	DialTimeout  time.Duration
}

// Load builds a Config from the environment. A .env file is loaded first
// when present; real environment variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	rateLimit, err := getEnvInt("UNIFI_RATE_LIMIT_PER_MINUTE", 300)
	if err != nil {
		return nil, err
	}

	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	queueSize, err := getEnvInt("EMAIL_QUEUE_SIZE", 64)
	if err != nil {
		return nil, err
	}

	campaignRate, err := getEnvInt("EMAIL_CAMPAIGN_RATE_PER_SECOND", 10)
	if err != nil {
		return nil, err
	}

	receiptWidth, err := getEnvInt("PRINTER_RECEIPT_WIDTH", 48)
	if err != nil {
		return nil, err
	}

	dialTimeout, err := getEnvInt("PRINTER_DIAL_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}

	smtpUser := getEnv("SMTP_USER", "")

	cfg := &Config{
		Server: ServerConfig{
			ListenAddr:  getEnv("LISTEN_ADDR", "0.0.0.0:8000"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3001,http://localhost:3000")),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
		},
		UniFi: UniFiConfig{
			ControllerURL:      getEnv("UNIFI_HOST", "https://192.168.1.1"),
			Username:           getEnv("UNIFI_USERNAME", "admin"),
			Password:           getEnv("UNIFI_PASSWORD", ""),
			Site:               getEnv("UNIFI_SITE", "default"),
			VerifyTLS:          getEnvBool("UNIFI_VERIFY_TLS", false),
			RateLimitPerMinute: rateLimit,
		},
		Email: EmailConfig{
			Provider:              getEnv("EMAIL_PROVIDER", "smtp"),
			SMTPHost:              getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:              smtpPort,
			SMTPUser:              smtpUser,
			SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
			SMTPUseTLS:            getEnvBool("SMTP_USE_TLS", true),
			SMTPUseSSL:            getEnvBool("SMTP_USE_SSL", false),
			ResendAPIKey:          getEnv("RESEND_API_KEY", ""),
			FromEmail:             getEnv("FROM_EMAIL", smtpUser),
			FromName:              getEnv("FROM_NAME", "LSLT WiFi Portal"),
			QueueSize:             queueSize,
			CampaignRatePerSecond: campaignRate,
		},
		Printer: PrinterConfig{
			ReceiptAddr:  getEnv("PRINTER_RECEIPT_ADDR", "192.168.1.100:9100"),
			ReceiptWidth: receiptWidth,
			LabelAddr:    getEnv("LABEL_PRINTER_ADDR", ""),
			CUPSPrinter:  getEnv("CUPS_PRINTER_NAME", "HP_LaserJet_Pro_MFP"),
			DialTimeout:  time.Duration(dialTimeout) * time.Second,
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}

	return parsed, nil
}

// getEnvBool treats exactly "true" (case insensitive) as true, anything
// else as false, matching how the upstream portal reads these flags.
func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	return strings.EqualFold(strings.TrimSpace(value), "true")
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
