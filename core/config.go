package core

import (
	"fmt"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		Build    string

		AppName         string
		SecretKey       string
		FrontendBaseURL string
		DefaultFromName string
		DefaultFromAddr string
		StaffInboxEmail string
		SendgridApiKey  string
		RollbarToken    string

		// completion request policy
		JustificationMinLen int

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Host               string
		Port               int
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}
)

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

// NewConfig loads the app configuration from defaults, an optional
// config/.env.<env> file and environment variables prefixed with the env name.
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Huduma")
	v.SetDefault("secretKey", "2c#q0(ign$+wmdyr&e!p-u7t*5z_hx98o)fkb@4l6svja31c")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromName", "Huduma")
	v.SetDefault("defaultFromAddr", "noreply@localhost")
	v.SetDefault("staffInboxEmail", "delivery@localhost")
	v.SetDefault("justificationMinLen", 30)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "huduma")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.disableTLS", true)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("loading %s", dotEnvPath))
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, fmt.Sprintf("checking %s", dotEnvPath))
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:                 env,
		Debug:               v.GetBool("debug"),
		TestMode:            v.GetBool("testMode"),
		Build:               v.GetString("build"),
		AppName:             v.GetString("appName"),
		SecretKey:           v.GetString("secretKey"),
		FrontendBaseURL:     v.GetString("frontendBaseURL"),
		DefaultFromName:     v.GetString("defaultFromName"),
		DefaultFromAddr:     v.GetString("defaultFromAddr"),
		StaffInboxEmail:     v.GetString("staffInboxEmail"),
		SendgridApiKey:      v.GetString("sendgridApiKey"),
		RollbarToken:        v.GetString("rollbarToken"),
		JustificationMinLen: v.GetInt("justificationMinLen"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Port:               v.GetInt("server.port"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
	}
	return conf, nil
}
