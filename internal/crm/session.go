package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Credential is an authenticated Salesforce session.
type Credential struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
}

// SessionCache shares a Credential between processes.
type SessionCache interface {
	Get(ctx context.Context) (Credential, bool, error)
	Set(ctx context.Context, cred Credential, ttl time.Duration) error
	Delete(ctx context.Context) error
}

// LoginConfig carries the username-password login inputs.
type LoginConfig struct {
	LoginURL      string
	Username      string
	Password      string
	SecurityToken string
	APIVersion    string
}

// Session owns the process-wide Salesforce credential.
//
// The credential is fetched lazily on first use. Concurrent cold starts share
// one login call. Invalidate drops the credential so the next caller logs in again.
type Session struct {
	cfg   LoginConfig
	http  *http.Client
	cache SessionCache
	ttl   time.Duration
	log   *slog.Logger

	mu    sync.RWMutex
	cred  *Credential
	group singleflight.Group
}

type SessionOption func(*Session)

// WithSessionCache shares the credential through cache for ttl.
func WithSessionCache(cache SessionCache, ttl time.Duration) SessionOption {
	return func(s *Session) {
		s.cache = cache
		s.ttl = ttl
	}
}

func WithHTTPClient(c *http.Client) SessionOption {
	return func(s *Session) { s.http = c }
}

func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

func NewSession(cfg LoginConfig, opts ...SessionOption) *Session {
	s := &Session{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Credential returns the cached credential or logs in.
func (s *Session) Credential(ctx context.Context) (Credential, error) {
	if c, ok := s.current(); ok {
		return c, nil
	}

	v, err, _ := s.group.Do("login", func() (any, error) {
		// Followers share this login; one caller hanging up must not fail the rest.
		ctx := context.WithoutCancel(ctx)
		if c, ok := s.current(); ok {
			return c, nil
		}
		if s.cache != nil {
			c, ok, err := s.cache.Get(ctx)
			if err != nil {
				s.log.Warn("crm session cache read failed", "err", err)
			} else if ok {
				s.store(c)
				return c, nil
			}
		}

		c, err := s.login(ctx)
		if err != nil {
			return Credential{}, err
		}
		s.store(c)
		s.log.Info("crm login successful", "instance_url", c.InstanceURL)

		if s.cache != nil {
			if err := s.cache.Set(ctx, c, s.ttl); err != nil {
				s.log.Warn("crm session cache write failed", "err", err)
			}
		}
		return c, nil
	})
	if err != nil {
		return Credential{}, err
	}
	return v.(Credential), nil
}

// Invalidate drops stale if it is still the current credential.
func (s *Session) Invalidate(ctx context.Context, stale Credential) {
	s.mu.Lock()
	dropped := s.cred != nil && s.cred.AccessToken == stale.AccessToken
	if dropped {
		s.cred = nil
	}
	s.mu.Unlock()

	if dropped && s.cache != nil {
		if err := s.cache.Delete(ctx); err != nil {
			s.log.Warn("crm session cache delete failed", "err", err)
		}
	}
}

func (s *Session) current() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil || s.cred.AccessToken == "" {
		return Credential{}, false
	}
	return *s.cred, true
}

func (s *Session) store(c Credential) {
	s.mu.Lock()
	s.cred = &c
	s.mu.Unlock()
}

const loginEnvelope = `<?xml version="1.0" encoding="utf-8"?>
<env:Envelope xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:env="http://schemas.xmlsoap.org/soap/envelope/">
  <env:Body>
    <n1:login xmlns:n1="urn:partner.soap.sforce.com">
      <n1:username>%s</n1:username>
      <n1:password>%s</n1:password>
    </n1:login>
  </env:Body>
</env:Envelope>`

type loginResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Login *struct {
			Result struct {
				ServerURL string `xml:"serverUrl"`
				SessionID string `xml:"sessionId"`
			} `xml:"result"`
		} `xml:"loginResponse"`
		Fault *struct {
			Code   string `xml:"faultcode"`
			String string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

func (s *Session) login(ctx context.Context) (Credential, error) {
	endpoint := strings.TrimRight(s.cfg.LoginURL, "/") + "/services/Soap/u/" + s.cfg.APIVersion
	body := fmt.Sprintf(loginEnvelope, xmlEscape(s.cfg.Username), xmlEscape(s.cfg.Password+s.cfg.SecurityToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=UTF-8")
	req.Header.Set("SOAPAction", "login")

	resp, err := s.http.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: read response: %v", ErrAuth, err)
	}

	var env loginResponse
	if err := xml.Unmarshal(raw, &env); err != nil {
		return Credential{}, fmt.Errorf("%w: http %d: unreadable response", ErrAuth, resp.StatusCode)
	}
	if f := env.Body.Fault; f != nil {
		return Credential{}, fmt.Errorf("%w: %s: %s", ErrAuth, f.Code, f.String)
	}
	if env.Body.Login == nil || env.Body.Login.Result.SessionID == "" {
		return Credential{}, fmt.Errorf("%w: http %d: no session in response", ErrAuth, resp.StatusCode)
	}

	u, err := url.Parse(env.Body.Login.Result.ServerURL)
	if err != nil || u.Host == "" {
		return Credential{}, fmt.Errorf("%w: bad serverUrl %q", ErrAuth, env.Body.Login.Result.ServerURL)
	}
	return Credential{
		AccessToken: env.Body.Login.Result.SessionID,
		InstanceURL: u.Scheme + "://" + u.Host,
	}, nil
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// RedisSessionCache stores the credential as JSON under a single key.
type RedisSessionCache struct {
	rdb *redis.Client
	key string
}

const DefaultSessionKey = "phonecase:crm:session"

func NewRedisSessionCache(rdb *redis.Client, key string) *RedisSessionCache {
	if key == "" {
		key = DefaultSessionKey
	}
	return &RedisSessionCache{rdb: rdb, key: key}
}

func (c *RedisSessionCache) Get(ctx context.Context) (Credential, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Credential{}, false, nil
	}
	if err != nil {
		return Credential{}, false, err
	}
	var cred Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return Credential{}, false, fmt.Errorf("decode cached session: %w", err)
	}
	if cred.AccessToken == "" || cred.InstanceURL == "" {
		return Credential{}, false, nil
	}
	return cred, true, nil
}

func (c *RedisSessionCache) Set(ctx context.Context, cred Credential, ttl time.Duration) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key, raw, ttl).Err()
}

func (c *RedisSessionCache) Delete(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}
