package telephony

import (
	"context"
	"errors"
	"fmt"

	"phonecase/internal/calls"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// RestAPI is the subset of the Twilio 2010 API used here. *openapi.ApiService satisfies it.
type RestAPI interface {
	CreateCall(params *openapi.CreateCallParams) (*openapi.ApiV2010Call, error)
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioClient places calls and sends SMS. No business logic here.
type TwilioClient struct {
	api  RestAPI
	from string
}

// NewTwilioClient builds a client from account credentials.
func NewTwilioClient(accountSID, authToken, from string) *TwilioClient {
	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return NewTwilioClientWithAPI(rc.Api, from)
}

func NewTwilioClientWithAPI(api RestAPI, from string) *TwilioClient {
	return &TwilioClient{api: api, from: from}
}

// PlaceCall implements calls.Dialer.
func (p *TwilioClient) PlaceCall(ctx context.Context, req calls.CallRequest) (string, error) {
	if req.To == "" {
		return "", errors.New("telephony: destination required")
	}
	from := req.From
	if from == "" {
		from = p.from
	}

	params := &openapi.CreateCallParams{}
	params.SetTo(req.To)
	params.SetFrom(from)
	params.SetUrl(req.URL)
	if req.StatusCallback != "" {
		params.SetStatusCallback(req.StatusCallback)
		params.SetStatusCallbackEvent(req.StatusCallbackEvents)
		params.SetStatusCallbackMethod("POST")
	}

	resp, err := p.api.CreateCall(params)
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Sid == nil {
		return "", errors.New("telephony: call created without sid")
	}
	return *resp.Sid, nil
}

// SendSMS sends body to the destination number and returns the message sid.
func (p *TwilioClient) SendSMS(ctx context.Context, to, body string) (string, error) {
	if to == "" || body == "" {
		return "", errors.New("telephony: destination and body required")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(p.from)
	params.SetBody(body)

	resp, err := p.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio sms: %w", err)
	}
	if resp == nil || resp.Sid == nil {
		return "", errors.New("telephony: message created without sid")
	}
	return *resp.Sid, nil
}
