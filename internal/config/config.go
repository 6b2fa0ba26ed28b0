package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration required by the middleware process.
// All values come from env (optionally seeded from a local .env file).
// No business logic should depend on raw environment variables.
type Config struct {
	App     AppConfig
	Twilio  TwilioConfig
	Routing RoutingConfig
	CRM     CRMConfig
	Auth    AuthConfig
	DB      DBConfig
	Redis   RedisConfig
}

type AppConfig struct {
	Env  string
	Port int

	// BaseURL is the public URL Twilio uses to reach this service.
	// Callback URLs for outbound calls are built from it.
	BaseURL string
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string

	// ValidateSignature turns on X-Twilio-Signature checks for provider webhooks.
	ValidateSignature bool
}

// RoutingConfig holds the forwarding numbers used by the IVR.
// Sales and Support fall back to DefaultNumber when unset.
type RoutingConfig struct {
	SalesNumber   string
	SupportNumber string
	DefaultNumber string
}

type CRMConfig struct {
	LoginURL      string
	Username      string
	Password      string
	SecurityToken string
	APIVersion    string

	// PhoneMatch is "exact" or "normalized".
	PhoneMatch  string
	PhoneFields []string

	// SessionTTL bounds how long a cached session is shared via Redis.
	SessionTTL time.Duration
}

type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	AccessTokenTTL time.Duration
}

// DBConfig is optional. When Host is empty reconcile outcomes stay in memory.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

// RedisConfig is optional. When Host is empty the CRM session is cached per process.
type RedisConfig struct {
	Host string
	Port int
}

const (
	PhoneMatchExact      = "exact"
	PhoneMatchNormalized = "normalized"

	defaultLoginURL   = "https://login.salesforce.com"
	defaultAPIVersion = "59.0"
)

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	if c.App.Env == "" {
		c.App.Env = "local"
	}
	{
		n, err := optionalInt("PORT", 5000)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}
	c.App.BaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("BASE_URL")), "/")

	c.Twilio.AccountSID = strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID"))
	c.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	c.Twilio.PhoneNumber = strings.TrimSpace(os.Getenv("TWILIO_PHONE_NUMBER"))
	{
		b, err := optionalBool("TWILIO_VALIDATE_SIGNATURE")
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.Twilio.ValidateSignature = b
	}

	c.Routing.DefaultNumber = strings.TrimSpace(os.Getenv("MY_PHONE_NUMBER"))
	c.Routing.SalesNumber = strings.TrimSpace(os.Getenv("SALES_PHONE"))
	c.Routing.SupportNumber = strings.TrimSpace(os.Getenv("SUPPORT_PHONE"))

	c.CRM.LoginURL = strings.TrimRight(strings.TrimSpace(os.Getenv("SF_LOGIN_URL")), "/")
	c.CRM.Username = strings.TrimSpace(os.Getenv("SF_USERNAME"))
	c.CRM.Password = os.Getenv("SF_PASSWORD")
	c.CRM.SecurityToken = firstNonEmpty(os.Getenv("SF_TOKEN"), os.Getenv("SF_SECURITY_TOKEN"))
	c.CRM.APIVersion = strings.TrimPrefix(strings.TrimSpace(os.Getenv("SF_API_VERSION")), "v")
	c.CRM.PhoneMatch = strings.ToLower(strings.TrimSpace(os.Getenv("SF_PHONE_MATCH")))
	c.CRM.PhoneFields = splitList(os.Getenv("SF_PHONE_FIELDS"))
	c.CRM.SessionTTL = mustDuration("CRM_SESSION_TTL")

	c.Auth = readAuth()

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := optionalInt("DB_PORT", 5432)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := optionalInt("REDIS_PORT", 6379)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks required values and fills defaults in place.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a valid port, got %d", c.App.Port))
	}
	if c.App.BaseURL == "" {
		errs = append(errs, errors.New("BASE_URL is required"))
	} else if u, err := url.Parse(c.App.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("BASE_URL must be an absolute URL, got %q", c.App.BaseURL))
	}

	if c.Twilio.AccountSID == "" {
		errs = append(errs, errors.New("TWILIO_ACCOUNT_SID is required"))
	}
	if c.Twilio.AuthToken == "" {
		errs = append(errs, errors.New("TWILIO_AUTH_TOKEN is required"))
	}
	if c.Twilio.PhoneNumber == "" {
		errs = append(errs, errors.New("TWILIO_PHONE_NUMBER is required"))
	}
	if c.IsProduction() && !c.Twilio.ValidateSignature {
		errs = append(errs, errors.New("TWILIO_VALIDATE_SIGNATURE must be true in production"))
	}

	if c.Routing.DefaultNumber == "" {
		errs = append(errs, errors.New("MY_PHONE_NUMBER is required"))
	}

	if c.CRM.LoginURL == "" {
		c.CRM.LoginURL = defaultLoginURL
	}
	if c.CRM.Username == "" {
		errs = append(errs, errors.New("SF_USERNAME is required"))
	}
	if c.CRM.Password == "" {
		errs = append(errs, errors.New("SF_PASSWORD is required"))
	}
	if c.CRM.APIVersion == "" {
		c.CRM.APIVersion = defaultAPIVersion
	}
	if c.CRM.PhoneMatch == "" {
		c.CRM.PhoneMatch = PhoneMatchExact
	}
	switch c.CRM.PhoneMatch {
	case PhoneMatchExact:
		if len(c.CRM.PhoneFields) == 0 {
			c.CRM.PhoneFields = []string{"SuppliedPhone"}
		}
	case PhoneMatchNormalized:
		if len(c.CRM.PhoneFields) == 0 {
			c.CRM.PhoneFields = []string{"ContactPhone__c", "Phone"}
		}
	default:
		errs = append(errs, fmt.Errorf("SF_PHONE_MATCH must be one of exact, normalized, got %q", c.CRM.PhoneMatch))
	}
	if c.CRM.SessionTTL <= 0 {
		// Salesforce's default session timeout is two hours.
		c.CRM.SessionTTL = 90 * time.Minute
	}

	if c.IsProduction() && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 24 * time.Hour
	}

	if c.AuditStoreEnabled() {
		if c.DB.Port <= 0 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
		}
		if c.DB.User == "" {
			errs = append(errs, errors.New("DB_USER is required when DB_HOST is set"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required when DB_HOST is set"))
		}
		if c.DB.SSLMode == "" {
			if c.IsProduction() {
				errs = append(errs, errors.New("DB_SSLMODE is required in production"))
			} else {
				c.DB.SSLMode = "disable"
			}
		}
		if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
			errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
		}
	}

	if c.SessionCacheEnabled() && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	return joinErrors(errs)
}

// LoadAuth reads only the JWT_* settings, for tools that mint tokens without
// running the server.
func LoadAuth() (AuthConfig, error) {
	_ = godotenv.Load()

	a := readAuth()
	if a.JWTSecret == "" {
		return AuthConfig{}, errors.New("JWT_SECRET is required")
	}
	if a.AccessTokenTTL <= 0 {
		a.AccessTokenTTL = 24 * time.Hour
	}
	return a, nil
}

func readAuth() AuthConfig {
	return AuthConfig{
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTIssuer:      strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		JWTAudience:    strings.TrimSpace(os.Getenv("JWT_AUDIENCE")),
		AccessTokenTTL: mustDuration("JWT_ACCESS_TTL"),
	}
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

// AuthEnabled reports whether the internal API requires bearer tokens.
func (c Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}

func (c Config) AuditStoreEnabled() bool {
	return c.DB.Host != ""
}

func (c Config) SessionCacheEnabled() bool {
	return c.Redis.Host != ""
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// CallbackURL joins BaseURL and path.
func (c Config) CallbackURL(path string) string {
	return c.App.BaseURL + "/" + strings.TrimLeft(path, "/")
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

// PostgresURL is the URL form of the DSN, required by the migrate driver.
func (c Config) PostgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     "/" + c.DB.Name,
		RawQuery: url.Values{"sslmode": []string{c.DB.SSLMode}}.Encode(),
	}
	return u.String()
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func optionalInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalBool(key string) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
