package config

import (
	"encoding/xml"
	"io"
	"os"
	"sync"
)

var (
	cfg     *APIConfig
	loadErr error
	once    sync.Once
)

// APIConfig represents the root element.
type APIConfig struct {
	XMLName        xml.Name             `xml:"API"`
	RequestDump    bool                 `xml:"REQUEST_DUMP,attr"`
	Context        ContextConfig        `xml:"CONTEXT"`
	Authentication AuthenticationConfig `xml:"AUTHENTICATION"`
	DB             DBConfig             `xml:"DB"`
	Search         SearchConfig         `xml:"SEARCH"`
	LLM            LLMConfig            `xml:"LLM"`
	Billing        BillingConfig        `xml:"BILLING"`
}

// ContextConfig holds basic server settings.
type ContextConfig struct {
	Port     int    `xml:"PORT"`
	Host     string `xml:"HOST"`
	Path     string `xml:"PATH"`
	TimeZone string `xml:"TIME_ZONE"`
}

// AuthenticationConfig holds authentication settings.
type AuthenticationConfig struct {
	AccessSecret  string `xml:"ACCESS_SECRET"`
	RefreshSecret string `xml:"REFRESH_SECRET"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Host     string       `xml:"HOST"`
	Port     int          `xml:"PORT"`
	Name     string       `xml:"NAME"`
	SSLMode  string       `xml:"SSL_MODE"`
	Username string       `xml:"USERNAME"`
	Password DBPassword   `xml:"PASSWORD"`
	Pool     DBPoolConfig `xml:"POOL"`
}

// DBPassword holds password details.
type DBPassword struct {
	Type  string `xml:"TYPE,attr"`
	Value string `xml:",chardata"`
}

// DBPoolConfig holds database connection pooling settings.
type DBPoolConfig struct {
	MaxOpenConns    int `xml:"MAX_OPEN_CONNS"`
	MaxIdleConns    int `xml:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int `xml:"CONN_MAX_LIFETIME"`
}

// SearchConfig holds the question-index settings.
type SearchConfig struct {
	AppID     string `xml:"APP_ID"`
	APIKey    string `xml:"API_KEY"`
	IndexName string `xml:"INDEX_NAME"`
}

// LLMConfig holds the chat-completion collaborator settings.
type LLMConfig struct {
	BaseURL string `xml:"BASE_URL"`
	APIKey  string `xml:"API_KEY"`
	Model   string `xml:"MODEL"`
}

// BillingConfig holds the checkout provider settings.
type BillingConfig struct {
	SecretKey     string `xml:"SECRET_KEY"`
	WebhookSecret string `xml:"WEBHOOK_SECRET"`
	PriceID       string `xml:"PRICE_ID"`
	FrontendURL   string `xml:"FRONTEND_URL"`
}

// LoadConfig loads and parses the XML configuration from the given file.
// Secret-bearing fields fall back to environment variables so the XML file
// can be committed without credentials.
func LoadConfig(xmlPath string) (*APIConfig, error) {
	once.Do(func() {
		f, err := os.Open(xmlPath)
		if err != nil {
			loadErr = err
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			loadErr = err
			return
		}

		var newCfg APIConfig
		if err := xml.Unmarshal(data, &newCfg); err != nil {
			loadErr = err
			return
		}

		applyEnvOverrides(&newCfg)
		cfg = &newCfg
	})

	if cfg == nil {
		return nil, loadErr
	}
	return cfg, nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *APIConfig {
	return cfg
}

func applyEnvOverrides(c *APIConfig) {
	fromEnv(&c.DB.Password.Value, "PLEW_DB_PASSWORD")
	fromEnv(&c.Authentication.AccessSecret, "PLEW_ACCESS_SECRET")
	fromEnv(&c.Authentication.RefreshSecret, "PLEW_REFRESH_SECRET")
	fromEnv(&c.Search.AppID, "ALGOLIA_APP_ID")
	fromEnv(&c.Search.APIKey, "ALGOLIA_API_KEY")
	fromEnv(&c.LLM.APIKey, "LLM_API_KEY")
	fromEnv(&c.Billing.SecretKey, "STRIPE_SECRET_KEY")
	fromEnv(&c.Billing.WebhookSecret, "STRIPE_WEBHOOK_SECRET")
}

func fromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}
