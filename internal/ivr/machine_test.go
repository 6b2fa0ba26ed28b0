package ivr

import "testing"

var dir = Directory{Sales: "+15550001111", Support: "+15550002222", Default: "+15550009999"}

func TestTransition_MenuRootGathersOneDigit(t *testing.T) {
	s := Transition(MenuRoot, Input{}, dir)
	if s.State != MenuRoot || s.Next != AwaitingDigit {
		t.Fatalf("unexpected states: %+v", s)
	}
	if s.Gather == nil || s.Gather.NumDigits != 1 || s.Gather.Action != GatherPath || s.Gather.Method != "POST" {
		t.Fatalf("unexpected gather: %+v", s.Gather)
	}
	if s.Redirect != MenuPath {
		t.Fatalf("expected redirect to menu, got %q", s.Redirect)
	}
	if s.Effect.Kind != EffectReconcile || s.Effect.Tag != "" {
		t.Fatalf("expected untagged reconcile, got %+v", s.Effect)
	}
}

func TestTransition_Digits(t *testing.T) {
	cases := []struct {
		name   string
		digits string
		dir    Directory
		state  State
		dial   string
		tag    string
	}{
		{name: "sales", digits: "1", dir: dir, state: RoutedSales, dial: "+15550001111", tag: SalesTag},
		{name: "support", digits: "2", dir: dir, state: RoutedSupport, dial: "+15550002222", tag: SupportTag},
		{name: "sales default", digits: "1", dir: Directory{Default: "+15550009999"}, state: RoutedSales, dial: "+15550009999", tag: SalesTag},
		{name: "support default", digits: "2", dir: Directory{Default: "+15550009999"}, state: RoutedSupport, dial: "+15550009999", tag: SupportTag},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Transition(AwaitingDigit, Input{Digits: tc.digits}, tc.dir)
			if s.State != tc.state || !s.Terminal() {
				t.Fatalf("expected %s, got %+v", tc.state, s)
			}
			if s.Dial != tc.dial {
				t.Fatalf("expected dial %q, got %q", tc.dial, s.Dial)
			}
			if s.Say == nil || s.Say.Text == "" {
				t.Fatalf("expected confirmation prompt")
			}
			if s.Effect.Kind != EffectReconcile || s.Effect.Tag != tc.tag {
				t.Fatalf("unexpected effect %+v", s.Effect)
			}
		})
	}
}

func TestTransition_InvalidChoiceLoopsToMenu(t *testing.T) {
	for _, d := range []string{"", "3", "9", "*", "#", "12"} {
		s := Transition(AwaitingDigit, Input{Digits: d}, dir)
		if s.State != InvalidChoice || s.Next != MenuRoot {
			t.Fatalf("digits %q: unexpected states %+v", d, s)
		}
		if s.Redirect != MenuPath || s.Dial != "" {
			t.Fatalf("digits %q: expected redirect without dial, got %+v", d, s)
		}
		if s.Effect.Kind != EffectNone {
			t.Fatalf("digits %q: expected no effect", d)
		}
	}

	if s := Transition(InvalidChoice, Input{}, dir); s.State != MenuRoot {
		t.Fatalf("expected invalid choice to re-enter menu, got %s", s.State)
	}
}

func TestTransition_RoutedIsTerminal(t *testing.T) {
	s := Transition(RoutedSales, Input{Digits: "2"}, dir)
	if s.State != RoutedSales || s.Gather != nil || s.Dial != "" || s.Effect.Kind != EffectNone {
		t.Fatalf("expected empty terminal step, got %+v", s)
	}
}
