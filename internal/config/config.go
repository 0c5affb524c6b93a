package config

import (
	"fmt"
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env    string `yaml:"env" env:"MARKET_ENV" env-default:"local"`
	Listen struct {
		BindIP    string `yaml:"bind_ip" env:"MARKET_BIND_IP" env-default:"127.0.0.1"`
		Port      string `yaml:"port" env:"MARKET_PORT" env-default:"9876"`
		Transport string `yaml:"transport" env:"MARKET_TRANSPORT" env-default:"fiber"`
		BasePath  string `yaml:"base_path" env:"MARKET_BASE_PATH" env-default:"/market"`
	} `yaml:"listen"`
	Backend struct {
		Mode     string        `yaml:"mode" env:"MARKET_BACKEND" env-default:"mock"`
		BaseURL  string        `yaml:"base_url" env:"MARKET_API_URL" env-default:""`
		Token    string        `yaml:"token" env:"MARKET_API_TOKEN" env-default:""`
		Timeout  time.Duration `yaml:"timeout" env-default:"10s"`
		Fixtures string        `yaml:"fixtures" env:"MARKET_FIXTURES" env-default:""`
		Latency  time.Duration `yaml:"latency" env-default:"0s"`
	} `yaml:"backend"`
	Storage struct {
		Driver string `yaml:"driver" env:"MARKET_STORAGE" env-default:"memory"`
		Path   string `yaml:"path" env:"MARKET_STORAGE_PATH" env-default:"market-dashboard.db"`
	} `yaml:"storage"`
	Views struct {
		AdminPageSize  int    `yaml:"admin_page_size" env-default:"100"`
		SellerPageSize int    `yaml:"seller_page_size" env-default:"20"`
		BuyerPageSize  int    `yaml:"buyer_page_size" env-default:"20"`
		Currency       string `yaml:"currency" env:"MARKET_CURRENCY" env-default:"NGN"`
		Locale         string `yaml:"locale" env:"MARKET_LOCALE" env-default:"en"`
	} `yaml:"views"`
	Auth struct {
		JWTSecret string        `yaml:"jwt_secret" env:"MARKET_JWT_SECRET" env-default:""`
		Issuer    string        `yaml:"issuer" env:"MARKET_JWT_ISSUER" env-default:"market-dashboard"`
		TokenTTL  time.Duration `yaml:"token_ttl" env-default:"1h"`
	} `yaml:"auth"`
	Charts struct {
		Theme      string        `yaml:"theme" env-default:"westeros"`
		CacheTTL   time.Duration `yaml:"cache_ttl" env-default:"5m"`
		AssetsHost string        `yaml:"assets_host" env-default:""`
	} `yaml:"charts"`
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Listen.BindIP, c.Listen.Port)
}

// MustLoad is Load for process start up: a bad config ends the process.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return cfg
}

// Load reads the YAML file at path and applies environment overrides. An
// empty path loads from the environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	var err error
	if path == "" {
		err = cleanenv.ReadEnv(cfg)
	} else {
		err = cleanenv.ReadConfig(path, cfg)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("config: %w; %s", err, desc)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Listen.Transport {
	case "fiber", "chi":
	default:
		return fmt.Errorf("config: unsupported transport %q", c.Listen.Transport)
	}
	switch c.Backend.Mode {
	case "mock":
	case "http":
		if c.Backend.BaseURL == "" {
			return fmt.Errorf("config: backend.base_url is required for http backend")
		}
	default:
		return fmt.Errorf("config: unsupported backend mode %q", c.Backend.Mode)
	}
	if c.Env == "prod" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret is required in prod")
	}
	switch c.Storage.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("config: unsupported storage driver %q", c.Storage.Driver)
	}
	return nil
}
