package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

const (
	ArchiveDriverCSV      = "csv"
	ArchiveDriverPostgres = "postgres"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	SpreadsheetID         string
	GoogleCredentialsPath string
	RegistrationSheet     int // Worksheet indexes, in spreadsheet order
	SubmissionSheet       int
	RidesSheet            int
	Timezone              *time.Location
	TimestampLayout       string

	SMTPAddr       string // host:port
	SMTPUsername   string
	SMTPPassword   string
	SMTPSenderName string
	SMTPStartTLS   bool // false means implicit TLS (port 465)
	MailReplyTo    string
	OperatorEmail  string

	LeadTime          time.Duration
	HeartbeatInterval time.Duration
	CheckpointPath    string
	LastSentPath      string

	ArchiveDriver      string
	ArchiveCSVPath     string
	ArchiveDatabaseURL string

	LogLevel    string
	Environment string
	CronSpec    string // Only used by the serve command
}

// Load reads configuration from environment variables and the given .env files (if present).
func Load(envFiles ...string) (*AppConfig, error) {
	// Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load(envFiles...)

	cfg := &AppConfig{}
	var err error

	required := []struct {
		name string
		dst  *string
	}{
		{"SPREADSHEET_ID", &cfg.SpreadsheetID},
		{"GOOGLE_CREDENTIALS_PATH", &cfg.GoogleCredentialsPath},
		{"SMTP_ADDR", &cfg.SMTPAddr},
		{"SMTP_USERNAME", &cfg.SMTPUsername},
		{"SMTP_PASSWORD", &cfg.SMTPPassword},
		{"MAIL_REPLY_TO", &cfg.MailReplyTo},
		{"OPERATOR_EMAIL", &cfg.OperatorEmail},
	}
	for _, r := range required {
		*r.dst = os.Getenv(r.name)
		if *r.dst == "" {
			return nil, fmt.Errorf("%s is not set", r.name)
		}
	}

	cfg.SMTPSenderName = getOr("SMTP_SENDER_NAME", "Head wind")
	cfg.SMTPStartTLS, err = boolOr("SMTP_STARTTLS", false)
	if err != nil {
		return nil, err
	}

	if cfg.RegistrationSheet, err = intOr("REGISTRATION_SHEET", 0); err != nil {
		return nil, err
	}
	if cfg.SubmissionSheet, err = intOr("SUBMISSION_SHEET", 1); err != nil {
		return nil, err
	}
	if cfg.RidesSheet, err = intOr("RIDES_SHEET", 2); err != nil {
		return nil, err
	}

	tz := getOr("TIMEZONE", "Europe/Zurich")
	cfg.Timezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.TimestampLayout = getOr("TIMESTAMP_LAYOUT", "01/02/2006 15:04:05")

	leadSeconds, err := intOr("LEAD_TIME_SECONDS", 1800)
	if err != nil {
		return nil, err
	}
	cfg.LeadTime = time.Duration(leadSeconds) * time.Second

	heartbeatSeconds, err := intOr("HEARTBEAT_INTERVAL_SECONDS", 30*24*60*60)
	if err != nil {
		return nil, err
	}
	cfg.HeartbeatInterval = time.Duration(heartbeatSeconds) * time.Second

	cfg.CheckpointPath = getOr("CHECKPOINT_PATH", "last_check.txt")
	cfg.LastSentPath = getOr("LAST_SENT_PATH", "last_sent.txt")

	cfg.ArchiveDriver = strings.ToLower(getOr("ARCHIVE_DRIVER", ArchiveDriverCSV))
	cfg.ArchiveCSVPath = getOr("ARCHIVE_CSV_PATH", "backup.csv")
	cfg.ArchiveDatabaseURL = os.Getenv("ARCHIVE_DATABASE_URL")
	switch cfg.ArchiveDriver {
	case ArchiveDriverCSV:
	case ArchiveDriverPostgres:
		if cfg.ArchiveDatabaseURL == "" {
			return nil, fmt.Errorf("ARCHIVE_DATABASE_URL is not set")
		}
	default:
		return nil, fmt.Errorf("invalid ARCHIVE_DRIVER %q", cfg.ArchiveDriver)
	}

	cfg.LogLevel = strings.ToLower(getOr("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getOr("ENVIRONMENT", "development"))
	cfg.CronSpec = getOr("CRON_SPEC", "*/5 * * * *") // Default: every 5 minutes

	return cfg, nil
}

func getOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolOr(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
