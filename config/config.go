package config

import (
	"bytes"
	_ "embed"
	"os"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var defaultConfig []byte

type config struct {
	Db     *dbConfig     `mapstructure:"db"`
	Server *serverConfig `mapstructure:"server"`
	Auth   *authConfig   `mapstructure:"auth"`
	Grpc   *grpcConfig   `mapstructure:"grpc"`
}

type dbConfig struct {
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	DetailLog    bool   `mapstructure:"detail-log"`
	MaxOpenConns int    `mapstructure:"max-open-conns"`
	MaxIdleConns int    `mapstructure:"max-idle-conns"`
}

type serverConfig struct {
	Port string `mapstructure:"port"`
}

type authConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	JwksUrl           string        `mapstructure:"jwks-url"`
	Issuer            string        `mapstructure:"issuer"`
	Audience          string        `mapstructure:"audience"`
	AllowedAlgorithms []string      `mapstructure:"allowed-algorithms"`
	PermissionsClaim  string        `mapstructure:"permissions-claim"`
	ClockSkew         time.Duration `mapstructure:"clock-skew"`
	FetchTimeout      time.Duration `mapstructure:"fetch-timeout"`
}

type grpcConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
}

var configuration *config

// LoadConfig reads the embedded default configuration, or the file named
// by BARBACK_CONFIG when set, and applies environment overrides for the
// database credentials.
func LoadConfig() (*config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("auth.permissions-claim", "permissions")
	v.SetDefault("auth.allowed-algorithms", []string{"RS256"})
	v.SetDefault("auth.fetch-timeout", "10s")

	if path := os.Getenv("BARBACK_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else if err := v.ReadConfig(bytes.NewReader(defaultConfig)); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&configuration); err != nil {
		return nil, err
	}

	if os.Getenv("BARBACK_USERNAME") != "" {
		configuration.Db.Username = os.Getenv("BARBACK_USERNAME")
	}
	if os.Getenv("BARBACK_PASSWORD") != "" {
		configuration.Db.Password = os.Getenv("BARBACK_PASSWORD")
	}
	if os.Getenv("BARBACK_HOST") != "" {
		configuration.Db.Host = os.Getenv("BARBACK_HOST")
	}
	if os.Getenv("BARBACK_PORT") != "" {
		configuration.Db.Port = os.Getenv("BARBACK_PORT")
	}
	if os.Getenv("BARBACK_DATABASE") != "" {
		configuration.Db.Database = os.Getenv("BARBACK_DATABASE")
	}
	if os.Getenv("BARBACK_JWKS_URL") != "" {
		configuration.Auth.JwksUrl = os.Getenv("BARBACK_JWKS_URL")
	}
	return configuration, nil
}

func GetDb() *dbConfig {
	return configuration.Db
}

func GetServer() *serverConfig {
	return configuration.Server
}

func GetAuth() *authConfig {
	return configuration.Auth
}

func GetGrpc() *grpcConfig {
	return configuration.Grpc
}
