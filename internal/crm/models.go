package crm

import (
	"errors"
	"fmt"
)

// Status is the Case Status picklist value as stored in Salesforce.
type Status string

const (
	StatusNew        Status = "New"
	StatusInProgress Status = "In Progress"
	StatusClosed     Status = "Closed"
)

// OriginPhone is the Case Origin for everything this service creates.
const OriginPhone = "Phone"

// Case is the subset of the Salesforce Case record this service reads and writes.
// Phone holds the value of the first configured phone field.
type Case struct {
	ID          string `json:"id"`
	CaseNumber  string `json:"case_number,omitempty"`
	Subject     string `json:"subject"`
	Status      Status `json:"status"`
	Origin      string `json:"origin"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

// NewCase is the create payload. Phone is written to every configured phone field.
type NewCase struct {
	Subject     string
	Description string
	Status      Status
	Origin      string
	Phone       string
}

var (
	// ErrAuth wraps every login failure.
	ErrAuth = errors.New("crm: authentication failed")

	ErrInvalidArgument = errors.New("crm: invalid argument")

	// ErrUnkeyablePhone means the phone cannot identify a Case under the active
	// match mode, e.g. an empty or withheld caller id.
	ErrUnkeyablePhone = errors.New("crm: phone cannot key a case")
)

// APIError is a non-2xx response from the Salesforce REST API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("crm: http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("crm: http %d: %s: %s", e.StatusCode, e.Code, e.Message)
}
