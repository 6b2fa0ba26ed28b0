package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Authenticator supplies and revokes Salesforce credentials.
type Authenticator interface {
	Credential(ctx context.Context) (Credential, error)
	Invalidate(ctx context.Context, stale Credential)
}

// Client is a thin Salesforce REST client for the Case sObject.
type Client struct {
	auth       Authenticator
	http       *http.Client
	apiVersion string
	matcher    Matcher
}

func NewClient(auth Authenticator, apiVersion string, matcher Matcher) *Client {
	return &Client{
		auth:       auth,
		http:       &http.Client{Timeout: 30 * time.Second},
		apiVersion: strings.TrimPrefix(apiVersion, "v"),
		matcher:    matcher,
	}
}

// FindCaseByPhone returns the first Case matching phone, or nil when there is none.
// A phone that cannot key a Case yields ErrUnkeyablePhone without any CRM traffic.
func (c *Client) FindCaseByPhone(ctx context.Context, phone string) (*Case, error) {
	soql, ok := c.matcher.Query(phone)
	if !ok {
		return nil, ErrUnkeyablePhone
	}

	var out struct {
		TotalSize int              `json:"totalSize"`
		Records   []map[string]any `json:"records"`
	}
	if err := c.do(ctx, http.MethodGet, "/query?q="+url.QueryEscape(soql), nil, &out); err != nil {
		return nil, fmt.Errorf("find case: %w", err)
	}
	if len(out.Records) == 0 {
		return nil, nil
	}
	cs := c.caseFromRecord(out.Records[0])
	return &cs, nil
}

// CreateCase inserts a Case and reads it back.
func (c *Client) CreateCase(ctx context.Context, in NewCase) (Case, error) {
	if in.Status == "" {
		in.Status = StatusNew
	}
	if in.Origin == "" {
		in.Origin = OriginPhone
	}

	fields := map[string]any{
		"Subject":     in.Subject,
		"Description": in.Description,
		"Status":      string(in.Status),
		"Origin":      in.Origin,
	}
	for _, f := range c.matcher.Fields {
		fields[f] = nullable(in.Phone)
	}

	var res struct {
		ID      string `json:"id"`
		Success bool   `json:"success"`
		Errors  []any  `json:"errors"`
	}
	if err := c.do(ctx, http.MethodPost, "/sobjects/Case", fields, &res); err != nil {
		return Case{}, fmt.Errorf("create case: %w", err)
	}
	if !res.Success || res.ID == "" {
		raw, _ := json.Marshal(res.Errors)
		return Case{}, fmt.Errorf("create case: not successful: %s", raw)
	}

	created, err := c.GetCase(ctx, res.ID)
	if err != nil {
		// The insert went through; report what was written.
		return Case{
			ID:          res.ID,
			Subject:     in.Subject,
			Status:      in.Status,
			Origin:      in.Origin,
			Phone:       in.Phone,
			Description: in.Description,
		}, nil
	}
	return created, nil
}

// GetCase retrieves one Case by id.
func (c *Client) GetCase(ctx context.Context, id string) (Case, error) {
	if id == "" {
		return Case{}, ErrInvalidArgument
	}
	path := "/sobjects/Case/" + url.PathEscape(id) + "?fields=" + url.QueryEscape(strings.Join(c.matcher.selectFields(), ","))
	var rec map[string]any
	if err := c.do(ctx, http.MethodGet, path, nil, &rec); err != nil {
		return Case{}, fmt.Errorf("get case: %w", err)
	}
	return c.caseFromRecord(rec), nil
}

// UpdateCaseStatus sets the Status of an existing Case.
func (c *Client) UpdateCaseStatus(ctx context.Context, id string, status Status) error {
	if id == "" || status == "" {
		return ErrInvalidArgument
	}
	body := map[string]any{"Status": string(status)}
	if err := c.do(ctx, http.MethodPatch, "/sobjects/Case/"+url.PathEscape(id), body, nil); err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	cred, err := c.auth.Credential(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	endpoint := cred.InstanceURL + "/services/data/v" + c.apiVersion + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.auth.Invalidate(ctx, cred)
	}
	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}

	var items []struct {
		Message   string `json:"message"`
		ErrorCode string `json:"errorCode"`
	}
	if json.Unmarshal(raw, &items) == nil && len(items) > 0 {
		apiErr.Code = items[0].ErrorCode
		apiErr.Message = items[0].Message
	}
	return apiErr
}

func (c *Client) caseFromRecord(rec map[string]any) Case {
	cs := Case{
		ID:          str(rec, "Id"),
		CaseNumber:  str(rec, "CaseNumber"),
		Subject:     str(rec, "Subject"),
		Status:      Status(str(rec, "Status")),
		Origin:      str(rec, "Origin"),
		Description: str(rec, "Description"),
	}
	for _, f := range c.matcher.Fields {
		if v := str(rec, f); v != "" {
			cs.Phone = v
			break
		}
	}
	return cs
}

func str(rec map[string]any, key string) string {
	if s, ok := rec[key].(string); ok {
		return s
	}
	return ""
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
