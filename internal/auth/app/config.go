package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/exchange"
	"github.com/AuthGuard/AuthGuard-sub001/internal/auth/service"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/httpx"
	"github.com/AuthGuard/AuthGuard-sub001/pkg/jwtx"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override. Nested keys join with "_"
// and are matched case-insensitively, e.g. AUTHGUARD_JWT_PRIVATEKEY.
const EnvPrefix = "AUTHGUARD"

// Token store drivers.
const (
	TokenStoreSQLite = "sqlite"
	TokenStoreRedis  = "redis"
)

type Config struct {
	Env string `mapstructure:"env"` // dev, staging, prod

	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	TokenStore TokenStoreConfig `mapstructure:"tokenStore"`
	JWT        JWTConfig        `mapstructure:"jwt"`

	AccessToken       StrategyConfig `mapstructure:"accessToken"`
	IDToken           StrategyConfig `mapstructure:"idToken"`
	APIKey            StrategyConfig `mapstructure:"apiKey"`
	AuthorizationCode StrategyConfig `mapstructure:"authorizationCode"`

	Exchange     ExchangeConfig     `mapstructure:"exchange"`
	CSRF         CSRFConfig         `mapstructure:"csrf"`
	Housekeeping HousekeepingConfig `mapstructure:"housekeeping"`
	RateLimits   httpx.RateLimits   `mapstructure:"rateLimits"`
	Keys         KeysConfig         `mapstructure:"keys"`

	// PepperFile holds the password pepper. It is created on first start.
	PepperFile string `mapstructure:"pepperFile"`
}

type HTTPConfig struct {
	Addr                string        `mapstructure:"addr"`
	ReadTimeout         time.Duration `mapstructure:"readTimeout"`
	WriteTimeout        time.Duration `mapstructure:"writeTimeout"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdownGracePeriod"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type TokenStoreConfig struct {
	Driver string      `mapstructure:"driver"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// JWTConfig selects the signing algorithm. Keys accept a file path, inline
// PEM or base64 DER; HMAC takes its secret from PrivateKey.
type JWTConfig struct {
	Algorithm  string           `mapstructure:"algorithm"`
	Issuer     string           `mapstructure:"issuer"`
	PublicKey  string           `mapstructure:"publicKey"`
	PrivateKey string           `mapstructure:"privateKey"`
	Encryption EncryptionConfig `mapstructure:"encryption"`
}

// EncryptionConfig enables token encryption when Algorithm is RSA or EC.
type EncryptionConfig struct {
	Algorithm  string `mapstructure:"algorithm"`
	PublicKey  string `mapstructure:"publicKey"`
	PrivateKey string `mapstructure:"privateKey"`
}

// StrategyConfig is the per token type generation policy.
type StrategyConfig struct {
	TokenLife           time.Duration `mapstructure:"tokenLife"`
	RefreshTokenLife    time.Duration `mapstructure:"refreshTokenLife"`
	UseJTI              bool          `mapstructure:"useJti"`
	ConsumeJTI          bool          `mapstructure:"consumeJti"`
	IncludePermissions  bool          `mapstructure:"includePermissions"`
	IncludeExternalID   bool          `mapstructure:"includeExternalId"`
	IncludeRoles        bool          `mapstructure:"includeRoles"`
	IncludeVerification bool          `mapstructure:"includeVerification"`
}

func (s StrategyConfig) Strategy() service.Strategy {
	return service.Strategy{
		TokenLife:           s.TokenLife,
		RefreshTokenLife:    s.RefreshTokenLife,
		UseJTI:              s.UseJTI,
		ConsumeJTI:          s.ConsumeJTI,
		IncludePermissions:  s.IncludePermissions,
		IncludeExternalID:   s.IncludeExternalID,
		IncludeRoles:        s.IncludeRoles,
		IncludeVerification: s.IncludeVerification,
	}
}

type ExchangeConfig struct {
	CheckRefreshTokenOptions   bool `mapstructure:"checkRefreshTokenOptions"`
	CheckRefreshTokenRequestIP bool `mapstructure:"checkRefreshTokenRequestIp"`
}

func (e ExchangeConfig) Refresh() exchange.RefreshConfig {
	return exchange.RefreshConfig{
		CheckOptions:   e.CheckRefreshTokenOptions,
		CheckRequestIP: e.CheckRefreshTokenRequestIP,
	}
}

// CSRFConfig enables CSRF protection on exchanges when Key is set.
type CSRFConfig struct {
	Key string `mapstructure:"key"`
}

type HousekeepingConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// KeysConfig holds the master key TOTP secrets are sealed with. Without one
// an ephemeral key is used and enrolled TOTP keys do not survive a restart.
type KeysConfig struct {
	MasterKey string `mapstructure:"masterKey"`
}

// SetDefaults registers every key with viper. AutomaticEnv only sees keys
// viper already knows about, so defaults double as the env whitelist.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", 10*time.Second)
	v.SetDefault("http.writeTimeout", 15*time.Second)
	v.SetDefault("http.shutdownGracePeriod", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.path", "authguard.db")

	v.SetDefault("tokenStore.driver", TokenStoreSQLite)
	v.SetDefault("tokenStore.redis.addr", "")
	v.SetDefault("tokenStore.redis.username", "")
	v.SetDefault("tokenStore.redis.password", "")
	v.SetDefault("tokenStore.redis.db", 0)
	v.SetDefault("tokenStore.redis.prefix", "authguard:")

	v.SetDefault("jwt.algorithm", jwtx.HMAC256)
	v.SetDefault("jwt.issuer", "AuthGuard")
	v.SetDefault("jwt.publicKey", "")
	v.SetDefault("jwt.privateKey", "")
	v.SetDefault("jwt.encryption.algorithm", "")
	v.SetDefault("jwt.encryption.publicKey", "")
	v.SetDefault("jwt.encryption.privateKey", "")

	setStrategyDefaults(v, "accessToken", StrategyConfig{
		TokenLife:          jwtx.DefaultAccessTokenTTL,
		RefreshTokenLife:   jwtx.DefaultRefreshTokenTTL,
		IncludePermissions: true,
		IncludeRoles:       true,
	})
	setStrategyDefaults(v, "idToken", StrategyConfig{
		TokenLife:           jwtx.DefaultAccessTokenTTL,
		IncludeExternalID:   true,
		IncludeVerification: true,
	})
	setStrategyDefaults(v, "apiKey", StrategyConfig{
		IncludePermissions: true,
	})
	setStrategyDefaults(v, "authorizationCode", StrategyConfig{
		TokenLife: 5 * time.Minute,
	})

	v.SetDefault("exchange.checkRefreshTokenOptions", false)
	v.SetDefault("exchange.checkRefreshTokenRequestIp", false)

	v.SetDefault("csrf.key", "")
	v.SetDefault("housekeeping.interval", time.Hour)

	limits := httpx.DefaultRateLimits()
	for name, l := range map[string]httpx.RateLimitConfig{
		"exchange": limits.Exchange,
		"token":    limits.Token,
		"public":   limits.Public,
	} {
		v.SetDefault("rateLimits."+name+".requests", l.RequestsPerWindow)
		v.SetDefault("rateLimits."+name+".window", l.Window)
		v.SetDefault("rateLimits."+name+".burst", l.Burst)
	}

	v.SetDefault("keys.masterKey", "")
	v.SetDefault("pepperFile", "pepper")
}

func setStrategyDefaults(v *viper.Viper, prefix string, s StrategyConfig) {
	v.SetDefault(prefix+".tokenLife", s.TokenLife)
	v.SetDefault(prefix+".refreshTokenLife", s.RefreshTokenLife)
	v.SetDefault(prefix+".useJti", s.UseJTI)
	v.SetDefault(prefix+".consumeJti", s.ConsumeJTI)
	v.SetDefault(prefix+".includePermissions", s.IncludePermissions)
	v.SetDefault(prefix+".includeExternalId", s.IncludeExternalID)
	v.SetDefault(prefix+".includeRoles", s.IncludeRoles)
	v.SetDefault(prefix+".includeVerification", s.IncludeVerification)
}

// NewViper returns a viper instance with defaults and environment overrides
// wired up. configFile, when non-empty, is read on top of the defaults.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// LoadConfig decodes v into a validated Config.
func LoadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.JWT.Algorithm) == "" {
		errs = append(errs, errors.New("jwt.algorithm is required"))
	}
	if strings.TrimSpace(c.JWT.PrivateKey) == "" {
		errs = append(errs, errors.New("jwt.privateKey is required"))
	}

	switch c.TokenStore.Driver {
	case TokenStoreSQLite:
	case TokenStoreRedis:
		if c.TokenStore.Redis.Addr == "" {
			errs = append(errs, errors.New("tokenStore.redis.addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("tokenStore.driver %q is not one of sqlite, redis", c.TokenStore.Driver))
	}

	if c.AccessToken.TokenLife <= 0 {
		errs = append(errs, errors.New("accessToken.tokenLife must be positive"))
	}
	if c.Housekeeping.Interval <= 0 {
		errs = append(errs, errors.New("housekeeping.interval must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
