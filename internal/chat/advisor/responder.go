// Package advisor picks the chat advisor's canned replies by keyword and
// pulls interest and goal tags out of visitor messages. It keeps no state;
// the current flow travels with the chat session.
package advisor

import "strings"

// Flow is the conversation state of a chat session.
type Flow string

const (
	FlowGeneral       Flow = "general"
	FlowQualification Flow = "qualification"
	FlowConsultation  Flow = "consultation"
)

// Valid reports whether f is a known flow.
func (f Flow) Valid() bool {
	return f == FlowGeneral || f == FlowQualification || f == FlowConsultation
}

// Reply kinds, exposed so the widget can render them differently.
const (
	KindGreeting     = "greeting"
	KindConsultation = "consultation"
	KindCourses      = "courses"
	KindTransition   = "career_transition"
	KindAdvancement  = "advancement"
	KindHelp         = "help"
	KindBookingPitch = "booking_pitch"
	KindDefault      = "default"
)

// Reply is the advisor's answer to one message.
type Reply struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
	Flow Flow   `json:"flow"`
}

type bucket struct {
	keywords []string
	kind     string
	text     string
	enter    Flow
}

// buckets are tried in order; the first one with a matching keyword answers.
var buckets = []bucket{
	{keywords: []string{"consultation", "call", "talk"}, kind: KindConsultation, text: consultationPitch, enter: FlowConsultation},
	{keywords: []string{"course", "learning", "skills"}, kind: KindCourses, text: coursesReply},
	{keywords: []string{"career change", "switch", "transition"}, kind: KindTransition, text: transitionReply, enter: FlowQualification},
	{keywords: []string{"salary", "promotion", "advance"}, kind: KindAdvancement, text: advancementReply},
	{keywords: []string{"help", "confused", "not sure"}, kind: KindHelp, text: helpReply},
}

// Greeting opens a new chat session.
func Greeting() Reply {
	return Reply{Text: greetingText, Kind: KindGreeting, Flow: FlowGeneral}
}

// Respond answers message given the session's current flow. Once a session
// enters the qualification or consultation flow it stays there and every
// message gets that flow's pitch.
func Respond(message string, flow Flow) Reply {
	switch flow {
	case FlowQualification:
		return Reply{Text: bookingPitch, Kind: KindBookingPitch, Flow: FlowQualification}
	case FlowConsultation:
		return Reply{Text: consultationPitch, Kind: KindConsultation, Flow: FlowConsultation}
	}

	lower := strings.ToLower(message)
	for _, b := range buckets {
		if !containsAny(lower, b.keywords) {
			continue
		}
		next := FlowGeneral
		if b.enter != "" {
			next = b.enter
		}
		return Reply{Text: b.text, Kind: b.kind, Flow: next}
	}
	return Reply{Text: defaultReply, Kind: KindDefault, Flow: FlowGeneral}
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
