package config

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/viper"

	"github.com/rpattn/crmql/internal/db"
	"github.com/rpattn/crmql/internal/filter"
)

// EnvPrefix prefixes every environment override, e.g. CRMQL_DATABASE_HOST.
const EnvPrefix = "CRMQL"

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

type FilterConfig struct {
	MinProfileScore int
	FormDateBounds  filter.DateBounds
	SearchFields    []string
	DefaultPerPage  int
	MaxPerPage      int
}

type Config struct {
	DB     db.Config
	Server ServerConfig
	Filter FilterConfig
}

// Default returns the configuration used when neither a config file nor the
// environment says otherwise.
func Default() Config {
	return Config{
		DB: db.DefaultConfig(),
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Filter: FilterConfig{
			MinProfileScore: 0,
			FormDateBounds:  filter.DateBoundsExclusive,
			SearchFields:    append([]string(nil), filter.DefaultSearchFields...),
			DefaultPerPage:  20,
			MaxPerPage:      200,
		},
	}
}

// Load reads config.yaml from configPath when present and applies
// environment overrides on top of Default.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
		log.Printf("[config] no config.yaml found, using defaults and env vars")
	} else {
		log.Printf("[config] loaded %s", v.ConfigFileUsed())
	}

	cfg.DB = db.Config{
		Host:     v.GetString("database.host"),
		Port:     v.GetInt("database.port"),
		User:     v.GetString("database.user"),
		Password: v.GetString("database.password"),
		DBName:   v.GetString("database.dbname"),
		SSLMode:  v.GetString("database.sslmode"),
		MaxConns: v.GetInt32("database.max_conns"),
	}
	cfg.Server = ServerConfig{
		Addr:           v.GetString("server.addr"),
		AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
	}

	bounds, err := filter.ParseDateBounds(v.GetString("filter.form_date_bounds"))
	if err != nil {
		return Config{}, err
	}
	cfg.Filter = FilterConfig{
		MinProfileScore: v.GetInt("filter.min_profile_score"),
		FormDateBounds:  bounds,
		SearchFields:    v.GetStringSlice("filter.search_fields"),
		DefaultPerPage:  v.GetInt("filter.default_per_page"),
		MaxPerPage:      v.GetInt("filter.max_per_page"),
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("database.host", cfg.DB.Host)
	v.SetDefault("database.port", cfg.DB.Port)
	v.SetDefault("database.user", cfg.DB.User)
	v.SetDefault("database.password", cfg.DB.Password)
	v.SetDefault("database.dbname", cfg.DB.DBName)
	v.SetDefault("database.sslmode", cfg.DB.SSLMode)
	v.SetDefault("database.max_conns", cfg.DB.MaxConns)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.allowed_origins", cfg.Server.AllowedOrigins)

	v.SetDefault("filter.min_profile_score", cfg.Filter.MinProfileScore)
	v.SetDefault("filter.form_date_bounds", string(cfg.Filter.FormDateBounds))
	v.SetDefault("filter.search_fields", cfg.Filter.SearchFields)
	v.SetDefault("filter.default_per_page", cfg.Filter.DefaultPerPage)
	v.SetDefault("filter.max_per_page", cfg.Filter.MaxPerPage)
}
