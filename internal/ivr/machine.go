// Package ivr is the two-level voice menu as an explicit state machine.
//
// Transition is pure: it returns what to say and where to go next, plus an
// optional side effect for the caller to run. Nothing here talks to Twilio or the CRM.
package ivr

import "strings"

type State string

const (
	MenuRoot      State = "menu_root"
	AwaitingDigit State = "awaiting_digit"
	RoutedSales   State = "routed_sales"
	RoutedSupport State = "routed_support"
	InvalidChoice State = "invalid_choice"
)

// Webhook paths. The menu root is also reachable as /ivr.
const (
	MenuPath   = "/voice"
	GatherPath = "/gather"
)

const (
	SalesTag   = "(Sales)"
	SupportTag = "(Support)"

	menuPrompt = "Welcome to the automated system. " +
		"Press 1 for Sales. " +
		"Press 2 for Support. " +
		"Or press any other key to hear this menu again."
	salesPrompt   = "You selected Sales. A case has been created. Please wait while we connect you to Sales."
	supportPrompt = "You selected Support. A case has been created. Please wait while we connect you to Support."
	invalidPrompt = "Invalid choice. Returning to the main menu."
)

// Input is what the caller sent on this leg.
type Input struct {
	Digits string
}

// Directory holds forwarding numbers. Empty Sales or Support fall back to Default.
type Directory struct {
	Sales   string
	Support string
	Default string
}

func (d Directory) SalesNumber() string   { return firstNonEmpty(d.Sales, d.Default) }
func (d Directory) SupportNumber() string { return firstNonEmpty(d.Support, d.Default) }

type EffectKind int

const (
	EffectNone EffectKind = iota
	// EffectReconcile asks the caller to ensure an inbound Case exists, tagged with Tag.
	EffectReconcile
)

type Effect struct {
	Kind EffectKind
	Tag  string
}

// Say is one spoken prompt.
type Say struct {
	Text     string
	Voice    string
	Language string
}

// Gather collects keypad input and posts it to Action.
type Gather struct {
	NumDigits int
	Action    string
	Method    string
	Prompt    Say
}

// Step is the outcome of one transition. Markup renders in field order:
// Gather, Say, Dial, Redirect.
type Step struct {
	// State is the state this leg ended in.
	State State
	// Next is the state the following webhook lands in.
	Next State

	Gather   *Gather
	Say      *Say
	Dial     string
	Redirect string

	Effect Effect
}

// Terminal reports whether the call leaves the menu on this step.
func (s Step) Terminal() bool {
	return s.State == RoutedSales || s.State == RoutedSupport
}

// Transition computes the step for a webhook that arrived in state with input.
func Transition(state State, in Input, dir Directory) Step {
	switch state {
	case MenuRoot, InvalidChoice:
		return menu()
	case AwaitingDigit:
		return choose(in, dir)
	default:
		// Routed legs are owned by the provider from here on.
		return Step{State: state, Next: state}
	}
}

func menu() Step {
	return Step{
		State: MenuRoot,
		Next:  AwaitingDigit,
		Gather: &Gather{
			NumDigits: 1,
			Action:    GatherPath,
			Method:    "POST",
			Prompt:    Say{Text: menuPrompt, Voice: "alice", Language: "en-US"},
		},
		Redirect: MenuPath,
		Effect:   Effect{Kind: EffectReconcile},
	}
}

func choose(in Input, dir Directory) Step {
	switch strings.TrimSpace(in.Digits) {
	case "1":
		return Step{
			State:  RoutedSales,
			Next:   RoutedSales,
			Say:    &Say{Text: salesPrompt},
			Dial:   dir.SalesNumber(),
			Effect: Effect{Kind: EffectReconcile, Tag: SalesTag},
		}
	case "2":
		return Step{
			State:  RoutedSupport,
			Next:   RoutedSupport,
			Say:    &Say{Text: supportPrompt},
			Dial:   dir.SupportNumber(),
			Effect: Effect{Kind: EffectReconcile, Tag: SupportTag},
		}
	default:
		return Step{
			State:    InvalidChoice,
			Next:     MenuRoot,
			Say:      &Say{Text: invalidPrompt},
			Redirect: MenuPath,
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
