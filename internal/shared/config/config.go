package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SinkFile     = "file"
	SinkPostgres = "postgres"

	AlertConsole = "console"
	AlertSQS     = "sqs"

	StoreLocal = "local"
	StoreS3    = "s3"
)

// Fixed workflow limits. These are not tunable from the environment.
const (
	MaxCallAttempts       = 3
	MaxValidationAttempts = 2
)

// RetryDelays is the wait after a failed call attempt, indexed by attempt number.
var RetryDelays = []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second}

// ErrMissingAPIKey is returned by Validate when GEMINI_API_KEY is unset.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable is required")

// Config holds the settings of one workflow run. It is built once at start-up
// and handed to each component.
type Config struct {
	WorkflowName string
	LogLevel     string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	MaxCallAttempts       int
	RetryDelays           []time.Duration
	MaxValidationAttempts int
	StrictSchema          bool

	EventLogPath string
	EventSinks   []string
	DatabaseURL  string

	OutputStore   string
	OutputKey     string
	LocalStoreDir string
	AWSRegion     string
	S3Bucket      string
	S3Prefix      string
	SSEKMSKeyID   string

	AlertSinks       []string
	AlertSQSQueueURL string

	MetricsTextfile string
}

// Load reads configuration from environment variables with the workflow defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env")

	return Config{
		WorkflowName:          getEnv("WORKFLOW_NAME", "gemini_md_summary"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		GeminiAPIKey:          strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTimeout:         time.Duration(getEnvInt("GEMINI_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxCallAttempts:       MaxCallAttempts,
		RetryDelays:           append([]time.Duration(nil), RetryDelays...),
		MaxValidationAttempts: MaxValidationAttempts,
		StrictSchema:          getEnvBool("STRICT_SCHEMA", false),
		EventLogPath:          getEnv("EVENT_LOG_PATH", "logs/workflow.log"),
		EventSinks:            splitAndTrim(getEnv("EVENT_SINKS", SinkFile)),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		OutputStore:           normalizeStoreType(getEnv("OUTPUT_STORE", StoreLocal)),
		OutputKey:             getEnv("OUTPUT_KEY", "output.json"),
		LocalStoreDir:         getEnv("LOCAL_STORE_DIR", "."),
		AWSRegion:             getEnv("AWS_REGION", ""),
		S3Bucket:              getEnv("S3_BUCKET", ""),
		S3Prefix:              getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:           getEnv("SSE_KMS_KEY_ID", ""),
		AlertSinks:            splitAndTrim(getEnv("ALERT_SINKS", AlertConsole)),
		AlertSQSQueueURL:      getEnv("ALERT_SQS_QUEUE_URL", ""),
		MetricsTextfile:       getEnv("METRICS_TEXTFILE", ""),
	}
}

// Validate reports settings the workflow cannot start without.
func (c Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingAPIKey
	}
	if c.MaxCallAttempts < 1 {
		return fmt.Errorf("max call attempts must be >= 1, got %d", c.MaxCallAttempts)
	}
	if c.MaxValidationAttempts < 1 {
		return fmt.Errorf("max validation attempts must be >= 1, got %d", c.MaxValidationAttempts)
	}
	if strings.TrimSpace(c.OutputKey) == "" {
		return errors.New("OUTPUT_KEY is required")
	}
	if len(c.EventSinks) == 0 {
		return errors.New("EVENT_SINKS must name at least one sink")
	}
	for _, s := range c.EventSinks {
		switch s {
		case SinkFile:
			if strings.TrimSpace(c.EventLogPath) == "" {
				return errors.New("EVENT_LOG_PATH is required for the file event sink")
			}
		case SinkPostgres:
			if strings.TrimSpace(c.DatabaseURL) == "" {
				return errors.New("DATABASE_URL is required for the postgres event sink")
			}
		default:
			return fmt.Errorf("unsupported event sink: %s", s)
		}
	}
	for _, s := range c.AlertSinks {
		switch s {
		case AlertConsole:
		case AlertSQS:
			if strings.TrimSpace(c.AlertSQSQueueURL) == "" {
				return errors.New("ALERT_SQS_QUEUE_URL is required for the sqs alert sink")
			}
		default:
			return fmt.Errorf("unsupported alert sink: %s", s)
		}
	}
	if c.OutputStore == StoreS3 && strings.TrimSpace(c.S3Bucket) == "" {
		return errors.New("S3_BUCKET is required when OUTPUT_STORE=s3")
	}
	return nil
}

// HasEventSink reports whether the named event sink is enabled.
func (c Config) HasEventSink(name string) bool {
	return contains(c.EventSinks, name)
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.ToLower(strings.TrimSpace(p)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StoreS3:
		return StoreS3
	default:
		return StoreLocal
	}
}
