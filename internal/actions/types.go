package actions

// The wire types mirror the dialogue engine's action-webhook protocol: the
// engine POSTs the action it resolved plus its tracker state, and gets back
// slot events to apply and messages to render.

// WebhookRequest is one dialogue turn.
type WebhookRequest struct {
	NextAction string  `json:"next_action"`
	SenderID   string  `json:"sender_id"`
	Tracker    Tracker `json:"tracker"`
}

// Tracker carries the engine's view of the conversation.
type Tracker struct {
	SenderID      string            `json:"sender_id"`
	Slots         map[string]string `json:"slots"`
	LatestMessage LatestMessage     `json:"latest_message"`
}

// LatestMessage is the user's most recent utterance.
type LatestMessage struct {
	Text string `json:"text"`
}

// Event instructs the engine to mutate its tracker.
type Event struct {
	Event string `json:"event"`
	Name  string `json:"name,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Button is one selectable menu option.
type Button struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// BotMessage is one message for the engine to render.
type BotMessage struct {
	Text    string   `json:"text,omitempty"`
	Buttons []Button `json:"buttons,omitempty"`
}

// WebhookResponse closes the turn.
type WebhookResponse struct {
	Events    []Event      `json:"events"`
	Responses []BotMessage `json:"responses"`
}

func slotEvent(name string, value any) Event {
	return Event{Event: "slot", Name: name, Value: value}
}
