package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultJWTKey = "defaultSecret"

// Config holds application configuration
type Config struct {
	Port      string `env:"PORT" envDefault:"3000"`
	AppURL    string `env:"APP_API_URL" envDefault:"http://localhost:3000"`
	AppName   string `env:"APP_NAME" envDefault:"AdConnect"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	PublicDir string `env:"PUBLIC_DIR" envDefault:"public"`
	UploadDir string `env:"UPLOAD_DIR" envDefault:"uploads"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://127.0.0.1:3000,http://127.0.0.1:63342,http://localhost:63342,https://adconnect.com"`

	DB DBConfig

	JWTKey    string        `env:"JWT_SECRET_KEY" envDefault:"defaultSecret"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`
	SaltRound int           `env:"SALT_ROUND" envDefault:"10"`

	Mpesa MpesaConfig

	PaymentPendingTimeout time.Duration `env:"PAYMENT_PENDING_TIMEOUT" envDefault:"15m"`
	SubscriptionCron      string        `env:"SUBSCRIPTION_CRON" envDefault:"0 9 * * *"`
	PaymentSweepCron      string        `env:"PAYMENT_SWEEP_CRON" envDefault:"*/5 * * * *"`

	SendgridAPIKey string `env:"SENDGRID_API_KEY"`
	EmailSender    string `env:"EMAIL_SENDER" envDefault:"no-reply@adconnect.co.ke"`
}

// DBConfig selects the gorm driver and its connection settings.
type DBConfig struct {
	Driver       string `env:"DB_DRIVER" envDefault:"mysql"`
	Host         string `env:"DB_HOST" envDefault:"localhost"`
	Port         string `env:"DB_PORT" envDefault:"3306"`
	User         string `env:"DB_USER" envDefault:"root"`
	Password     string `env:"DB_PASSWORD"`
	Name         string `env:"DB_NAME" envDefault:"adconnect"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
}

// MpesaConfig holds the Daraja API credentials.
type MpesaConfig struct {
	Environment     string        `env:"MPESA_ENV" envDefault:"sandbox"`
	BaseURL         string        `env:"MPESA_BASE_URL"`
	ConsumerKey     string        `env:"MPESA_CONSUMER_KEY"`
	ConsumerSecret  string        `env:"MPESA_CONSUMER_SECRET"`
	ShortCode       string        `env:"MPESA_SHORTCODE" envDefault:"174379"`
	PassKey         string        `env:"MPESA_PASSKEY"`
	CallbackURL     string        `env:"MPESA_CALLBACK_URL"`
	TransactionType string        `env:"MPESA_TRANSACTION_TYPE" envDefault:"CustomerPayBillOnline"`
	Timeout         time.Duration `env:"MPESA_TIMEOUT" envDefault:"30s"`
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	AppConfig = cfg

	if AppConfig.JWTKey == defaultJWTKey {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
}

// Parse reads the environment into a Config and fills derived values.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}

	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	switch cfg.DB.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	if cfg.Mpesa.BaseURL == "" {
		cfg.Mpesa.BaseURL = MpesaBaseURL(cfg.Mpesa.Environment)
	}
	cfg.Mpesa.BaseURL = strings.TrimRight(cfg.Mpesa.BaseURL, "/")
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")

	return cfg, nil
}

// MpesaBaseURL returns the Daraja host for the given environment.
func MpesaBaseURL(environment string) string {
	if strings.EqualFold(environment, "production") {
		return "https://api.safaricom.co.ke"
	}
	return "https://sandbox.safaricom.co.ke"
}
