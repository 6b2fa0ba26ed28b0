package telephony

import (
	"context"
	"errors"
	"testing"

	"phonecase/internal/calls"

	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeRestAPI struct {
	call    *openapi.CreateCallParams
	message *openapi.CreateMessageParams
	err     error
}

func (f *fakeRestAPI) CreateCall(p *openapi.CreateCallParams) (*openapi.ApiV2010Call, error) {
	f.call = p
	if f.err != nil {
		return nil, f.err
	}
	sid := "CA123"
	return &openapi.ApiV2010Call{Sid: &sid}, nil
}

func (f *fakeRestAPI) CreateMessage(p *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.message = p
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &openapi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioClient_PlaceCall(t *testing.T) {
	api := &fakeRestAPI{}
	p := NewTwilioClientWithAPI(api, "+15550000000")

	sid, err := p.PlaceCall(context.Background(), calls.CallRequest{
		To:                   "+15551234567",
		URL:                  "https://ivr.example.com/voice",
		StatusCallback:       "https://ivr.example.com/status",
		StatusCallbackEvents: calls.StatusCallbackEvents,
	})
	if err != nil {
		t.Fatalf("place call: %v", err)
	}
	if sid != "CA123" {
		t.Fatalf("unexpected sid %q", sid)
	}
	got := api.call
	if *got.To != "+15551234567" || *got.From != "+15550000000" || *got.Url != "https://ivr.example.com/voice" {
		t.Fatalf("unexpected params %+v", got)
	}
	if *got.StatusCallback != "https://ivr.example.com/status" || len(*got.StatusCallbackEvent) != 4 {
		t.Fatalf("unexpected status callback params %+v", got)
	}
}

func TestTwilioClient_PlaceCallRequiresDestination(t *testing.T) {
	api := &fakeRestAPI{}
	p := NewTwilioClientWithAPI(api, "+15550000000")
	if _, err := p.PlaceCall(context.Background(), calls.CallRequest{}); err == nil {
		t.Fatalf("expected error")
	}
	if api.call != nil {
		t.Fatalf("expected no provider request")
	}
}

func TestTwilioClient_SendSMS(t *testing.T) {
	api := &fakeRestAPI{}
	p := NewTwilioClientWithAPI(api, "+15550000000")

	sid, err := p.SendSMS(context.Background(), "+15551234567", "hello")
	if err != nil || sid != "SM123" {
		t.Fatalf("send sms: sid=%q err=%v", sid, err)
	}
	if *api.message.Body != "hello" || *api.message.From != "+15550000000" {
		t.Fatalf("unexpected params %+v", api.message)
	}
}

func TestTwilioClient_SendSMSProviderError(t *testing.T) {
	boom := errors.New("boom")
	p := NewTwilioClientWithAPI(&fakeRestAPI{err: boom}, "+15550000000")
	if _, err := p.SendSMS(context.Background(), "+15551234567", "hello"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}
