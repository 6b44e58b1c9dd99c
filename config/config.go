package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
)

const (
	StoreSQLite  = "sqlite"
	StoreMsgpack = "msgpack"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	// Listeners
	HTTPAddr   string `mapstructure:"HTTP_ADDR"`
	PacketAddr string `mapstructure:"PACKET_ADDR"` // empty disables the packet listener

	// Storage
	StoreDriver string `mapstructure:"STORE_DRIVER"` // sqlite | msgpack
	StorePath   string `mapstructure:"STORE_PATH"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	GinMode  string `mapstructure:"GIN_MODE"`

	// comma separated; empty allows every origin
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Business defaults, used until settings are saved
	CompanyName       string  `mapstructure:"COMPANY_NAME"`
	DefaultBatchSize  int     `mapstructure:"DEFAULT_BATCH_SIZE"`
	LowStockThreshold float64 `mapstructure:"LOW_STOCK_THRESHOLD"`
	PackagingLowStock int     `mapstructure:"PACKAGING_LOW_STOCK"`
}

// Load reads an optional .env file and then the environment. files
// overrides the .env lookup.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	// a missing .env is fine
	_ = godotenv.Load(files...)

	v := viper.New()
	v.AutomaticEnv()

	def := inventory.DefaultSettings()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("PACKET_ADDR", "")
	v.SetDefault("STORE_DRIVER", StoreSQLite)
	v.SetDefault("STORE_PATH", "chemworks.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("COMPANY_NAME", def.CompanyName)
	v.SetDefault("DEFAULT_BATCH_SIZE", def.DefaultBatchSize)
	v.SetDefault("LOW_STOCK_THRESHOLD", def.LowStockThreshold)
	v.SetDefault("PACKAGING_LOW_STOCK", def.PackagingLowStock)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	fields := map[string]string{}
	if c.StoreDriver != StoreSQLite && c.StoreDriver != StoreMsgpack {
		fields["STORE_DRIVER"] = "oneof=sqlite msgpack"
	}
	if strings.TrimSpace(c.StorePath) == "" {
		fields["STORE_PATH"] = "required"
	}
	for k, v := range settingsFields(c.Settings()) {
		fields[k] = v
	}
	if len(fields) > 0 {
		return inventory.NewValidationError(fields)
	}
	return nil
}

// Settings are the configured defaults for a store that has none saved.
func (c *Config) Settings() inventory.Settings {
	return inventory.Settings{
		CompanyName:       c.CompanyName,
		DefaultBatchSize:  c.DefaultBatchSize,
		LowStockThreshold: c.LowStockThreshold,
		PackagingLowStock: c.PackagingLowStock,
	}
}

func settingsFields(s inventory.Settings) map[string]string {
	err := s.Validate()
	if err == nil {
		return nil
	}
	ve, ok := err.(*inventory.ValidationError)
	if !ok {
		return map[string]string{"settings": err.Error()}
	}
	out := make(map[string]string, len(ve.Fields))
	for k, v := range ve.Fields {
		out[strings.ToUpper(k)] = v
	}
	return out
}

func (c *Config) CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
