package zalo

// Webhook event names the channel delivers. Only text messages drive the
// conversation; everything else gets a fixed reply.
const (
	EventUserSendText    = "user_send_text"
	EventUserSendImage   = "user_send_image"
	EventUserSendSticker = "user_send_sticker"
	EventFollow          = "follow"
	EventUnfollow        = "unfollow"
)

// WebhookEvent is the inbound webhook payload.
type WebhookEvent struct {
	EventName   string  `json:"event_name"`
	Timestamp   string  `json:"timestamp"`
	Sender      Sender  `json:"sender"`
	Recipient   OAID    `json:"recipient"`
	Message     Message `json:"message"`
	Source      string  `json:"source"`
	UserIDByApp string  `json:"user_id_by_app"`
}

type Sender struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type OAID struct {
	ID string `json:"id"`
}

type Message struct {
	MsgID string `json:"msg_id"`
	Text  string `json:"text"`
}

// UserID returns the stable session key for the sender.
func (e *WebhookEvent) UserID() string {
	if e.Sender.ID != "" {
		return e.Sender.ID
	}
	return e.UserIDByApp
}

// IsText reports whether the event carries a user text message the state
// machine can process.
func (e *WebhookEvent) IsText() bool {
	return e.EventName == EventUserSendText
}

type sendRequest struct {
	Recipient sendRecipient `json:"recipient"`
	Message   sendMessage   `json:"message"`
}

type sendRecipient struct {
	UserID string `json:"user_id"`
}

type sendMessage struct {
	Text string `json:"text"`
}

type sendResponse struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

type tokenResponse struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
	Data    struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	} `json:"data"`
}
