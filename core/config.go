package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the process wide configuration, loaded once at start up.
var Conf = NewConfig()

type (
	ServerConfig struct {
		Host                      string
		DebugHost                 string
		AllowedOrigins            []string
		DisableReqLogs            bool
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	SessionConfig struct {
		Store     string // memory | redis | postgres
		TTL       time.Duration
		KeyPrefix string
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	StorageConfig struct {
		Driver      string // fixtures | postgres
		FixturesDir string
	}

	BlogConfig struct {
		APIURL   string
		Timeout  time.Duration
		PageSize int
	}

	Config struct {
		AppName         string
		Build           string
		Env             string
		Debug           bool
		TestMode        bool
		WorkDir         string
		SecretKey       string
		FrontendBaseURL string
		ContactEmail    string
		RollbarToken    string
		SendgridApiKey  string

		Server   ServerConfig
		Database DatabaseConfig
		Session  SessionConfig
		Redis    RedisConfig
		Storage  StorageConfig
		Blog     BlogConfig

		defaultFromEmail string
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

func (c *Config) ContactAddress() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.ContactEmail}
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "IFCET")
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("secretKey", "k2j9-ap)x7c$+14=qv&ifcet(0!z)#*e3(#mt6h^$aulavirtual")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("contactEmail", "informes@ifcet.edu.pe")
	v.SetDefault("defaultFromEmail", "IFCET <noreply@ifcet.edu.pe>")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("serverHost", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverAllowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("serverDisableReqLogs", false)
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 7*24*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbName", "ifcet")
	v.SetDefault("dbUser", "ifcet")
	v.SetDefault("dbPassword", "ifcet")
	v.SetDefault("dbAdminUser", "postgres")
	v.SetDefault("dbAdminPassword", "postgres")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("sessionStore", "memory")
	v.SetDefault("sessionTTL", 30*24*time.Hour)
	v.SetDefault("sessionKeyPrefix", "aula")

	v.SetDefault("redisAddr", "localhost:6379")
	v.SetDefault("redisPassword", "")
	v.SetDefault("redisDB", 0)

	v.SetDefault("storageDriver", "fixtures")
	v.SetDefault("storageFixturesDir", "")

	v.SetDefault("blogApiURL", "")
	v.SetDefault("blogTimeout", 10*time.Second)
	v.SetDefault("blogPageSize", 3)

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

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:         v.GetString("appName"),
		Build:           v.GetString("build"),
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        v.GetBool("testMode"),
		WorkDir:         wd,
		SecretKey:       v.GetString("secretKey"),
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		ContactEmail:    v.GetString("contactEmail"),
		RollbarToken:    v.GetString("rollbarToken"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			DebugHost:                 v.GetString("serverDebugHost"),
			AllowedOrigins:            v.GetStringSlice("serverAllowedOrigins"),
			DisableReqLogs:            v.GetBool("serverDisableReqLogs"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetInt("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Session: SessionConfig{
			Store:     strings.ToLower(v.GetString("sessionStore")),
			TTL:       v.GetDuration("sessionTTL"),
			KeyPrefix: v.GetString("sessionKeyPrefix"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redisAddr"),
			Password: v.GetString("redisPassword"),
			DB:       v.GetInt("redisDB"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(v.GetString("storageDriver")),
			FixturesDir: v.GetString("storageFixturesDir"),
		},
		Blog: BlogConfig{
			APIURL:   v.GetString("blogApiURL"),
			Timeout:  v.GetDuration("blogTimeout"),
			PageSize: v.GetInt("blogPageSize"),
		},
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}
}
