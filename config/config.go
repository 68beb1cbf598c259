package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"jwt"`
	Exchange struct {
		// ProviderURL is the base URL of the exchange-rate provider. The base
		// currency code is appended as the final path segment.
		ProviderURL    string        `mapstructure:"provider_url"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
		CacheTTL       time.Duration `mapstructure:"cache_ttl"`
		// FallbackRates is used whenever the live provider cannot serve a pair.
		// Keyed by base currency, then by quote currency.
		FallbackRates map[string]map[string]float64 `mapstructure:"fallback_rates"`
	} `mapstructure:"exchange"`
	Accounts struct {
		DefaultDailyLimit    float64 `mapstructure:"default_daily_limit"`
		DefaultMonthlyLimit  float64 `mapstructure:"default_monthly_limit"`
		BusinessDailyLimit   float64 `mapstructure:"business_daily_limit"`
		BusinessMonthlyLimit float64 `mapstructure:"business_monthly_limit"`
		// ProvisionBRL controls whether a BRL account is created alongside the
		// mandatory USD/EUR/USDT set at registration.
		ProvisionBRL bool `mapstructure:"provision_brl"`
	} `mapstructure:"accounts"`
}

var AppConfig Config

func setDefaults() {
	viper.SetDefault("server.port", "8080")

	viper.SetDefault("exchange.provider_url", "https://api.exchangerate-api.com/v4/latest")
	viper.SetDefault("exchange.request_timeout", "5s")
	viper.SetDefault("exchange.cache_ttl", "1h")
	viper.SetDefault("exchange.fallback_rates", map[string]map[string]float64{
		"USD":  {"EUR": 0.92, "BRL": 5.05, "USDT": 1.0},
		"EUR":  {"USD": 1.09, "BRL": 5.49, "USDT": 1.09},
		"BRL":  {"USD": 0.198, "EUR": 0.182, "USDT": 0.198},
		"USDT": {"USD": 1.0, "EUR": 0.92, "BRL": 5.05},
	})

	viper.SetDefault("accounts.default_daily_limit", 10000.0)
	viper.SetDefault("accounts.default_monthly_limit", 50000.0)
	viper.SetDefault("accounts.business_daily_limit", 100000.0)
	viper.SetDefault("accounts.business_monthly_limit", 500000.0)
	viper.SetDefault("accounts.provision_brl", true)
}

func LoadConfig(path string) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
