package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr            string `yaml:"addr"`
		IntrospectPath  string `yaml:"introspect_path"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // memory | postgres | mongo
		DSN      string `yaml:"dsn"`
		SeedPath string `yaml:"seed_path"` // sólo driver=memory
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MinConns        int    `yaml:"min_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
		Mongo struct {
			URI      string `yaml:"uri"`
			Database string `yaml:"database"`
		} `yaml:"mongo"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // none | memory | redis
		TTL   string `yaml:"ttl"`  // TTL de los lookups de revocación
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	JWT struct {
		PublicKeyPath string   `yaml:"public_key_path"`
		KeyID         string   `yaml:"key_id"`
		JWKSPath      string   `yaml:"jwks_path"`
		Leeway        string   `yaml:"leeway"`
		Algorithms    []string `yaml:"algorithms"` // informativo; el set de claves decide
	} `yaml:"jwt"`

	Auth struct {
		Mode                string `yaml:"mode"` // basic | client_secret | bearer (CSV para encadenar)
		IntrospectBasicUser string `yaml:"introspect_basic_user"`
		IntrospectBasicPass string `yaml:"introspect_basic_pass"`
	} `yaml:"auth"`

	Introspection struct {
		UsernameField string `yaml:"username_field"` // email | name | id
	} `yaml:"introspection"`

	Rate struct {
		Enabled        bool     `yaml:"enabled"`
		Window         string   `yaml:"window"`
		MaxRequests    int      `yaml:"max_requests"`
		Whitelist      []string `yaml:"whitelist"`       // paths excluidos
		TrustedProxies []string `yaml:"trusted_proxies"` // CIDRs cuyo X-Forwarded-For se acepta
	} `yaml:"rate"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load lee el YAML, aplica defaults y overrides por env, y valida.
// Un path vacío arranca sólo con defaults + env.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	c.applyDefaults()

	// Overrides por env
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	// Rutas relativas se resuelven respecto al directorio del YAML
	if path != "" {
		base := filepath.Dir(path)
		c.JWT.PublicKeyPath = resolvePath(base, c.JWT.PublicKeyPath)
		c.JWT.JWKSPath = resolvePath(base, c.JWT.JWKSPath)
		c.Storage.SeedPath = resolvePath(base, c.Storage.SeedPath)
	}

	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.IntrospectPath == "" {
		c.Server.IntrospectPath = "/oauth/introspect"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "10s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "15s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxOpenConns == 0 {
		c.Storage.Postgres.MaxOpenConns = 10
	}
	if c.Storage.Mongo.Database == "" {
		c.Storage.Mongo.Database = "hellojohn"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "5s"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "introspect:"
	}
	if c.JWT.Leeway == "" {
		c.JWT.Leeway = "0s"
	}
	if c.Auth.Mode == "" {
		c.Auth.Mode = "basic"
	}
	if c.Introspection.UsernameField == "" {
		c.Introspection.UsernameField = "email"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 600
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func resolvePath(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("INTROSPECT_PATH"); ok {
		c.Server.IntrospectPath = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("STORAGE_SEED_PATH"); ok {
		c.Storage.SeedPath = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}
	if v, ok := getEnvStr("MONGO_URI"); ok {
		c.Storage.Mongo.URI = v
	}
	if v, ok := getEnvStr("MONGO_DATABASE"); ok {
		c.Storage.Mongo.Database = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("CACHE_TTL"); ok {
		c.Cache.TTL = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_PUBLIC_KEY_PATH"); ok {
		c.JWT.PublicKeyPath = v
	}
	if v, ok := getEnvStr("JWT_KEY_ID"); ok {
		c.JWT.KeyID = v
	}
	if v, ok := getEnvStr("JWT_JWKS_PATH"); ok {
		c.JWT.JWKSPath = v
	}
	if v, ok := getEnvStr("JWT_LEEWAY"); ok {
		c.JWT.Leeway = v
	}
	if v, ok := getEnvCSV("JWT_ALGORITHMS"); ok {
		c.JWT.Algorithms = v
	}

	// AUTH
	if v, ok := getEnvStr("AUTH_MODE"); ok {
		c.Auth.Mode = strings.ToLower(v)
	}
	if v, ok := getEnvStr("INTROSPECT_BASIC_USER"); ok {
		c.Auth.IntrospectBasicUser = v
	}
	if v, ok := getEnvStr("INTROSPECT_BASIC_PASS"); ok {
		c.Auth.IntrospectBasicPass = v
	}

	// INTROSPECTION
	if v, ok := getEnvStr("INTROSPECT_USERNAME_FIELD"); ok {
		c.Introspection.UsernameField = strings.ToLower(v)
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvCSV("RATE_WHITELIST"); ok {
		c.Rate.Whitelist = v
	}
	if v, ok := getEnvCSV("RATE_TRUSTED_PROXIES"); ok {
		c.Rate.TrustedProxies = v
	}

	// METRICS
	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}
	if v, ok := getEnvStr("METRICS_PATH"); ok {
		c.Metrics.Path = v
	}

	// LOG
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
}

var (
	ErrNoKeySource = errors.New("config: jwt.public_key_path or jwt.jwks_path is required")
	ErrBothKeys    = errors.New("config: jwt.public_key_path and jwt.jwks_path are mutually exclusive")
)

// Validate rechaza combinaciones contradictorias.
func (c *Config) Validate() error {
	var errs []error

	switch c.App.Env {
	case "dev", "staging", "prod":
	default:
		errs = append(errs, fmt.Errorf("config: unknown app.env %q", c.App.Env))
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("config: storage.dsn is required for postgres"))
		}
	case "mongo":
		if c.Storage.Mongo.URI == "" {
			errs = append(errs, errors.New("config: storage.mongo.uri is required for mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver))
	}

	switch c.Cache.Kind {
	case "none", "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("config: cache.redis.addr is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown cache.kind %q", c.Cache.Kind))
	}

	switch {
	case c.JWT.PublicKeyPath == "" && c.JWT.JWKSPath == "":
		errs = append(errs, ErrNoKeySource)
	case c.JWT.PublicKeyPath != "" && c.JWT.JWKSPath != "":
		errs = append(errs, ErrBothKeys)
	}

	for _, m := range c.AuthModes() {
		switch m {
		case "basic":
			if c.Auth.IntrospectBasicUser == "" || c.Auth.IntrospectBasicPass == "" {
				errs = append(errs, errors.New("config: auth.introspect_basic_user/pass are required for auth.mode=basic"))
			}
		case "client_secret", "bearer":
		default:
			errs = append(errs, fmt.Errorf("config: unknown auth.mode %q", m))
		}
	}

	switch c.Introspection.UsernameField {
	case "email", "name", "id":
	default:
		errs = append(errs, fmt.Errorf("config: unknown introspection.username_field %q", c.Introspection.UsernameField))
	}

	if !strings.HasPrefix(c.Server.IntrospectPath, "/") {
		errs = append(errs, fmt.Errorf("config: server.introspect_path must start with '/': %q", c.Server.IntrospectPath))
	}
	if c.Rate.MaxRequests < 0 {
		errs = append(errs, errors.New("config: rate.max_requests must be >= 0"))
	}
	if _, err := c.TrustedProxies(); err != nil {
		errs = append(errs, err)
	}

	durations := map[string]string{
		"server.read_timeout":                c.Server.ReadTimeout,
		"server.write_timeout":               c.Server.WriteTimeout,
		"server.shutdown_timeout":            c.Server.ShutdownTimeout,
		"storage.postgres.conn_max_lifetime": c.Storage.Postgres.ConnMaxLifetime,
		"cache.ttl":                          c.Cache.TTL,
		"jwt.leeway":                         c.JWT.Leeway,
		"rate.window":                        c.Rate.Window,
	}
	for name, v := range durations {
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %s: %w", name, err))
			continue
		}
		if d < 0 {
			errs = append(errs, fmt.Errorf("config: %s must not be negative", name))
		}
	}

	return errors.Join(errs...)
}

// AuthModes retorna los modos de autenticación del caller, en orden.
func (c *Config) AuthModes() []string {
	var out []string
	for _, m := range strings.Split(c.Auth.Mode, ",") {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			out = append(out, m)
		}
	}
	return out
}

// ExposeDetail indica si los 500 pueden llevar el detalle del error.
// Nunca en prod.
func (c *Config) ExposeDetail() bool {
	return c.App.Env != "prod"
}

// Duration parsea un campo ya validado; vacío => 0.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// TrustedProxies parsea rate.trusted_proxies. Acepta CIDRs o IPs sueltas.
func (c *Config) TrustedProxies() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.Rate.TrustedProxies))
	for _, s := range c.Rate.TrustedProxies {
		if p, err := netip.ParsePrefix(s); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("config: invalid rate.trusted_proxies entry %q", s)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
