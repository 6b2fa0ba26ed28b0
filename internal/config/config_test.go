package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:     AppConfig{Env: "local", Port: 5000, BaseURL: "https://ivr.example.com"},
		Twilio:  TwilioConfig{AccountSID: "AC123", AuthToken: "tok", PhoneNumber: "+15550000000"},
		Routing: RoutingConfig{DefaultNumber: "+15551112222"},
		CRM:     CRMConfig{Username: "sf@example.com", Password: "pw"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_AppliesCRMDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.CRM.LoginURL != "https://login.salesforce.com" {
		t.Fatalf("unexpected login url %q", c.CRM.LoginURL)
	}
	if c.CRM.PhoneMatch != PhoneMatchExact {
		t.Fatalf("expected exact match default, got %q", c.CRM.PhoneMatch)
	}
	if len(c.CRM.PhoneFields) != 1 || c.CRM.PhoneFields[0] != "SuppliedPhone" {
		t.Fatalf("unexpected phone fields %v", c.CRM.PhoneFields)
	}
	if c.CRM.APIVersion != "59.0" {
		t.Fatalf("unexpected api version %q", c.CRM.APIVersion)
	}
}

func TestValidate_NormalizedMatchDefaultsFields(t *testing.T) {
	c := validConfig()
	c.CRM.PhoneMatch = PhoneMatchNormalized
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Join(c.CRM.PhoneFields, ",") != "ContactPhone__c,Phone" {
		t.Fatalf("unexpected phone fields %v", c.CRM.PhoneFields)
	}
}

func TestValidate_RejectsUnknownPhoneMatch(t *testing.T) {
	c := validConfig()
	c.CRM.PhoneMatch = "fuzzy"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unknown SF_PHONE_MATCH")
	}
}

func TestValidate_ProductionRequiresSignatureAndSecret(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected production errors")
	}
	if !strings.Contains(err.Error(), "TWILIO_VALIDATE_SIGNATURE") || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected signature and secret errors, got %v", err)
	}
}

func TestValidate_AuditStoreDefaultsSSLMode(t *testing.T) {
	c := validConfig()
	c.DB = DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "phonecase"}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if got := c.PostgresURL(); got != "postgres://postgres:x@localhost:5432/phonecase?sslmode=disable" {
		t.Fatalf("unexpected postgres url %q", got)
	}
}

func TestCallbackURL(t *testing.T) {
	c := validConfig()
	if got := c.CallbackURL("/status"); got != "https://ivr.example.com/status" {
		t.Fatalf("unexpected callback url %q", got)
	}
}

func TestLoad_ReadsAliasesFromEnv(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "DB_HOST", "REDIS_HOST", "SF_PHONE_MATCH", "TWILIO_VALIDATE_SIGNATURE"} {
		t.Setenv(k, "")
	}
	t.Setenv("BASE_URL", "https://ivr.example.com/")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "tok")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15550000000")
	t.Setenv("MY_PHONE_NUMBER", "+15551112222")
	t.Setenv("SF_USERNAME", "sf@example.com")
	t.Setenv("SF_PASSWORD", "pw")
	t.Setenv("SF_TOKEN", "")
	t.Setenv("SF_SECURITY_TOKEN", "sectok")
	t.Setenv("SF_PHONE_FIELDS", "Phone, ContactPhone__c")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.App.BaseURL != "https://ivr.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", c.App.BaseURL)
	}
	if c.CRM.SecurityToken != "sectok" {
		t.Fatalf("expected SF_SECURITY_TOKEN alias, got %q", c.CRM.SecurityToken)
	}
	if strings.Join(c.CRM.PhoneFields, ",") != "Phone,ContactPhone__c" {
		t.Fatalf("unexpected phone fields %v", c.CRM.PhoneFields)
	}
	if c.App.Port != 5000 {
		t.Fatalf("expected default port 5000, got %d", c.App.Port)
	}
}

func TestLoadAuth_IgnoresServerSettings(t *testing.T) {
	// A malformed server setting must not block minting a token.
	t.Setenv("PORT", "not-a-port")
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("SF_USERNAME", "")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ISSUER", " phonecase ")
	t.Setenv("JWT_AUDIENCE", "")
	t.Setenv("JWT_ACCESS_TTL", "")

	a, err := LoadAuth()
	if err != nil {
		t.Fatalf("load auth: %v", err)
	}
	if a.JWTSecret != "s3cret" || a.JWTIssuer != "phonecase" {
		t.Fatalf("unexpected auth config %+v", a)
	}
	if a.AccessTokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h default ttl, got %s", a.AccessTokenTTL)
	}

	if _, err := Load(); err == nil {
		t.Fatalf("expected full Load to reject the server settings")
	}
}

func TestLoadAuth_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadAuth(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
}
