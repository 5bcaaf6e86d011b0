package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendDynamo = "dynamo"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Push providers.
const (
	PushFCM = "fcm"
	PushSNS = "sns"
	PushLog = "log"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort     string `env:"APP_PORT" envDefault:"3000"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	// Backend selects the notification store, device registry and recipient directory.
	Backend string `env:"STORE_BACKEND" envDefault:"dynamo"`

	AWSRegion      string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSEndpointURL string `env:"AWS_ENDPOINT_URL"` // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`
	DynamoTables   DynamoTables

	Mongo Mongo

	Push Push

	JWTPublicKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH" envDefault:"./public_key.pem"`
	JWTPrivateKeyPath string        `env:"JWT_PRIVATE_KEY_PATH"` // optional; only needed to mint tokens
	JWTExpiry         time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	Kafka Kafka

	// RecipientRole is the directory role that receives listing alerts.
	RecipientRole string `env:"RECIPIENT_ROLE" envDefault:"agent"`
	// RequireDeviceToken narrows resolution to recipients with at least one token.
	RequireDeviceToken bool `env:"REQUIRE_DEVICE_TOKEN" envDefault:"false"`
	// MatchRegion narrows resolution to recipients in the listing's region.
	MatchRegion bool `env:"MATCH_REGION" envDefault:"false"`

	DispatchTimeout time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"15s"`
	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"15s"`

	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"20"`
	AdminPageSize   int `env:"ADMIN_PAGE_SIZE" envDefault:"10"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE" envDefault:"100"`
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Recipients    string `env:"DYNAMO_TABLE_RECIPIENTS" envDefault:"users"`
	Devices       string `env:"DYNAMO_TABLE_DEVICES" envDefault:"devices"`
	Notifications string `env:"DYNAMO_TABLE_NOTIFICATIONS" envDefault:"notifications"`
}

// Mongo holds MongoDB connection settings.
type Mongo struct {
	URL            string        `env:"MONGODB_URL" envDefault:"mongodb://localhost:27017"`
	Database       string        `env:"MONGODB_DATABASE" envDefault:"listing_alerts"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize    uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`
	RetryAttempts  int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"2s"`
}

// Push holds push transport settings. Transport clients are constructed once
// at start-up and injected into the dispatcher.
type Push struct {
	Provider                string `env:"PUSH_PROVIDER" envDefault:"fcm"`
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	SNSRegion               string `env:"SNS_REGION" envDefault:"us-east-1"`
	SNSAndroidAppARN        string `env:"SNS_ANDROID_APP_ARN"`
	SNSIOSAppARN            string `env:"SNS_IOS_APP_ARN"`
	SNSConcurrency          int    `env:"SNS_CONCURRENCY" envDefault:"10"`
	AndroidSound            string `env:"PUSH_ANDROID_SOUND" envDefault:"notif_sound"`
	IOSSound                string `env:"PUSH_IOS_SOUND" envDefault:"notif_sound.wav"`
}

// Kafka holds the listing-event consumer settings. The consumer is disabled when Brokers is empty.
type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_LISTING_TOPIC" envDefault:"listing.created"`
	GroupID string   `env:"KAFKA_GROUP_ID" envDefault:"listing-notify"`
}

// Load reads an optional .env file and then all configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendDynamo, BackendMongo, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Backend)
	}
	switch c.Push.Provider {
	case PushFCM, PushSNS, PushLog:
	default:
		return fmt.Errorf("unknown PUSH_PROVIDER %q", c.Push.Provider)
	}
	if c.DefaultPageSize < 1 || c.AdminPageSize < 1 || c.MaxPageSize < 1 {
		return fmt.Errorf("page sizes must be positive")
	}
	return nil
}
