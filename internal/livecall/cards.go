package livecall

import (
	"fmt"
	"strings"
	"time"
)

// Message is a chat webhook payload: either plain text or a card.
type Message struct {
	Text    string   `json:"text,omitempty"`
	CardsV2 []CardV2 `json:"cardsV2,omitempty"`
}

// CardV2 wraps one card with its id.
type CardV2 struct {
	CardID string `json:"cardId"`
	Card   Card   `json:"card"`
}

// Card is the chat card body.
type Card struct {
	Header   *CardHeader `json:"header,omitempty"`
	Sections []Section   `json:"sections,omitempty"`
}

// CardHeader is the card title block.
type CardHeader struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// Section groups widgets under an optional header.
type Section struct {
	Header      string   `json:"header,omitempty"`
	Collapsible bool     `json:"collapsible,omitempty"`
	Widgets     []Widget `json:"widgets"`
}

// Widget is one card widget; exactly one field is set.
type Widget struct {
	DecoratedText *DecoratedText `json:"decoratedText,omitempty"`
	TextParagraph *TextParagraph `json:"textParagraph,omitempty"`
	ButtonList    *ButtonList    `json:"buttonList,omitempty"`
}

// DecoratedText is a labelled value row.
type DecoratedText struct {
	TopLabel  string `json:"topLabel,omitempty"`
	Text      string `json:"text"`
	StartIcon *Icon  `json:"startIcon,omitempty"`
}

// Icon references a built-in chat icon.
type Icon struct {
	KnownIcon string `json:"knownIcon"`
}

// TextParagraph is a free-text widget.
type TextParagraph struct {
	Text string `json:"text"`
}

// ButtonList holds action buttons.
type ButtonList struct {
	Buttons []Button `json:"buttons"`
}

// Button is one card button.
type Button struct {
	Text    string  `json:"text"`
	OnClick OnClick `json:"onClick"`
}

// OnClick is either an app action or a link.
type OnClick struct {
	Action   *Action   `json:"action,omitempty"`
	OpenLink *OpenLink `json:"openLink,omitempty"`
}

// Action invokes an app function with parameters.
type Action struct {
	Function   string            `json:"function"`
	Parameters []ActionParameter `json:"parameters,omitempty"`
}

// ActionParameter is one key/value passed with an action.
type ActionParameter struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OpenLink opens a URL.
type OpenLink struct {
	URL string `json:"url"`
}

const takeoverFunction = "requestCallTakeover"

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// buildCallAlertCard is the card posted when a call connects.
func buildCallAlertCard(session *Session, lead LeadInfo, dashboardURL string) *Message {
	dashboard := orDefault(dashboardURL, "https://app.retellai.com")
	return &Message{
		CardsV2: []CardV2{{
			CardID: "call-" + session.CallID,
			Card: Card{
				Header: &CardHeader{
					Title:    "🔴 LIVE CALL IN PROGRESS",
					Subtitle: "Agent: " + orDefault(session.AgentName, "TravelBucks Concierge"),
				},
				Sections: []Section{
					{
						Header: "Customer Information",
						Widgets: []Widget{
							{DecoratedText: &DecoratedText{TopLabel: "Name", Text: orDefault(session.Customer.Name, "Unknown"), StartIcon: &Icon{KnownIcon: "PERSON"}}},
							{DecoratedText: &DecoratedText{TopLabel: "Phone", Text: orDefault(session.Customer.Phone, "Unknown"), StartIcon: &Icon{KnownIcon: "PHONE"}}},
							{DecoratedText: &DecoratedText{TopLabel: "Email", Text: orDefault(session.Customer.Email, "Not provided"), StartIcon: &Icon{KnownIcon: "EMAIL"}}},
						},
					},
					{
						Header:      "Lead Details",
						Collapsible: true,
						Widgets: []Widget{
							{TextParagraph: &TextParagraph{Text: formatLeadInfo(lead)}},
						},
					},
					{
						Header: "Call Controls",
						Widgets: []Widget{
							{ButtonList: &ButtonList{Buttons: []Button{
								{
									Text: "🎧 Request Takeover",
									OnClick: OnClick{Action: &Action{
										Function:   takeoverFunction,
										Parameters: []ActionParameter{{Key: "call_id", Value: session.CallID}},
									}},
								},
								{
									Text:    "📝 View Full Details",
									OnClick: OnClick{OpenLink: &OpenLink{URL: dashboard + "/call/" + session.CallID}},
								},
							}}},
						},
					},
				},
			},
		}},
	}
}

// buildTranscriptMessage formats one transcript segment as a thread reply.
func buildTranscriptMessage(speaker, text string, timestamp time.Time) *Message {
	icon := "👤"
	label := "Customer"
	if speaker == "agent" {
		icon = "🤖"
		label = "Agent"
	}
	return &Message{
		Text: fmt.Sprintf("**%s %s** (%s):\n%s", icon, label, timestamp.Format("3:04:05 PM"), text),
	}
}

// buildCallEndedCard summarizes a finished call.
func buildCallEndedCard(session *Session, outcome string, duration time.Duration) *Message {
	return &Message{
		CardsV2: []CardV2{{
			CardID: "call-ended-" + session.CallID,
			Card: Card{
				Header: &CardHeader{
					Title:    "✅ Call Ended",
					Subtitle: "Duration: " + formatDuration(duration),
				},
				Sections: []Section{{
					Widgets: []Widget{
						{DecoratedText: &DecoratedText{TopLabel: "Outcome", Text: orDefault(outcome, "Completed"), StartIcon: &Icon{KnownIcon: "STAR"}}},
						{DecoratedText: &DecoratedText{TopLabel: "Customer", Text: orDefault(session.Customer.Name, "Unknown")}},
					},
				}},
			},
		}},
	}
}

func formatLeadInfo(lead LeadInfo) string {
	var b strings.Builder
	if lead.Source != "" {
		fmt.Fprintf(&b, "**Source:** %s\n", lead.Source)
	}
	if lead.Campaign != "" {
		fmt.Fprintf(&b, "**Campaign:** %s\n", lead.Campaign)
	}
	if lead.Interests != "" {
		fmt.Fprintf(&b, "**Interests:** %s\n", lead.Interests)
	}
	if lead.Notes != "" {
		fmt.Fprintf(&b, "**Notes:** %s\n", lead.Notes)
	}
	if b.Len() == 0 {
		return "No additional lead information available."
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	if secs <= 0 {
		return "0s"
	}
	if secs >= 60 {
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	}
	return fmt.Sprintf("%ds", secs)
}
