package telephony

import (
	"strings"
	"testing"

	"phonecase/internal/ivr"
)

func TestRenderStep_Menu(t *testing.T) {
	out, err := RenderStep(ivr.Transition(ivr.MenuRoot, ivr.Input{}, ivr.Directory{}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"<Response>", "<Gather", `numDigits="1"`, `action="/gather"`, "<Say", "<Redirect", "/voice"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %s", want, out)
		}
	}
	if strings.Index(out, "<Gather") > strings.Index(out, "<Redirect") {
		t.Fatalf("expected Gather before Redirect: %s", out)
	}
}

func TestRenderStep_DialSales(t *testing.T) {
	dir := ivr.Directory{Sales: "+15550001111", Default: "+15559990000"}
	out, err := RenderStep(ivr.Transition(ivr.AwaitingDigit, ivr.Input{Digits: "1"}, dir))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "<Dial") || !strings.Contains(out, "+15550001111") {
		t.Fatalf("expected dial to sales, got %s", out)
	}
	if strings.Contains(out, "<Gather") {
		t.Fatalf("routed step must not gather: %s", out)
	}
}

func TestRenderStep_InvalidRedirectsToMenu(t *testing.T) {
	out, err := RenderStep(ivr.Transition(ivr.AwaitingDigit, ivr.Input{Digits: "9"}, ivr.Directory{}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Invalid choice") || !strings.Contains(out, "<Redirect") {
		t.Fatalf("expected invalid prompt and redirect, got %s", out)
	}
	if strings.Contains(out, "<Dial") {
		t.Fatalf("invalid choice must not dial: %s", out)
	}
}
