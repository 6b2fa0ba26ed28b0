package telephony

import (
	"strconv"

	"phonecase/internal/ivr"

	"github.com/twilio/twilio-go/twiml"
)

// emptyTwiML is served when rendering fails so the provider still gets a 200.
const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// RenderStep maps an IVR step to TwiML. Verbs follow Step's field order.
func RenderStep(s ivr.Step) (string, error) {
	var verbs []twiml.Element

	if g := s.Gather; g != nil {
		verbs = append(verbs, &twiml.VoiceGather{
			NumDigits:     strconv.Itoa(g.NumDigits),
			Action:        g.Action,
			Method:        g.Method,
			InnerElements: []twiml.Element{say(g.Prompt)},
		})
	}
	if s.Say != nil {
		verbs = append(verbs, say(*s.Say))
	}
	if s.Dial != "" {
		verbs = append(verbs, &twiml.VoiceDial{Number: s.Dial})
	}
	if s.Redirect != "" {
		verbs = append(verbs, &twiml.VoiceRedirect{Url: s.Redirect})
	}

	return twiml.Voice(verbs)
}

func say(s ivr.Say) *twiml.VoiceSay {
	return &twiml.VoiceSay{
		Message:  s.Text,
		Voice:    s.Voice,
		Language: s.Language,
	}
}
