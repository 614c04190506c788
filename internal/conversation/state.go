package conversation

import (
	"time"

	"github.com/shopspring/decimal"
)

// State identifies where a chat-based order conversation currently stands.
type State string

const (
	StateNew                   State = "new"
	StateWaitingForPhone       State = "waiting_for_phone"
	StateWaitingForProductInfo State = "waiting_for_product_info"
	StateConfirming            State = "confirming"
	StateCompleted             State = "completed"
	StateCancelled             State = "cancelled"
	StateContactingStaff       State = "contacting_staff"
)

// IsValid checks if the state is one of the enumerated values.
func (s State) IsValid() bool {
	switch s {
	case StateNew, StateWaitingForPhone, StateWaitingForProductInfo,
		StateConfirming, StateCompleted, StateCancelled, StateContactingStaff:
		return true
	}
	return false
}

// IsTerminal reports whether the conversation has ended. A terminal session
// is discarded and the next contact starts fresh.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Sender types for the message history.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// MessageTypeText is the only message type the engine produces.
const MessageTypeText = "text"

// Message is one entry of the append-only conversation log.
type Message struct {
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// LineDraft is one not-yet-committed product line collected during the
// conversation. Prices are filled in only after catalog resolution.
type LineDraft struct {
	ProductCode string          `json:"productCode"`
	ProductType string          `json:"productType"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Thickness   float64         `json:"thickness"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
}

// Complete reports whether every field required to resolve the line against
// the catalog is present. Thickness may be zero: the two-dimension input form
// carries no pane thickness and the catalog resolves it per product.
func (d LineDraft) Complete() bool {
	return d.ProductCode != "" &&
		d.Width > 0 &&
		d.Height > 0 &&
		d.Thickness >= 0 &&
		d.Quantity > 0
}

// Session is the durable per-user conversation record. It is mutated only by
// the Engine; the session store persists it as a single JSON document.
type Session struct {
	UserID        string      `json:"userId"`
	State         State       `json:"state"`
	CreatedAt     time.Time   `json:"createdAt"`
	LastActivity  time.Time   `json:"lastActivity"`
	RetryCount    int         `json:"retryCount"`
	LastError     string      `json:"lastError,omitempty"`
	MessageCount  int         `json:"messageCount"`
	CustomerPhone string      `json:"customerPhone,omitempty"`
	CustomerID    *uint       `json:"customerId,omitempty"`
	CustomerName  string      `json:"customerName,omitempty"`
	PartialOrder  []LineDraft `json:"partialOrder"`
	History       []Message   `json:"messageHistory"`
}

// NewSession creates a fresh session for an unseen user id.
func NewSession(userID string) *Session {
	now := time.Now().UTC()
	return &Session{
		UserID:       userID,
		State:        StateNew,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Touch refreshes the inactivity clock.
func (s *Session) Touch() {
	s.LastActivity = time.Now().UTC()
}

// Append records a message in the conversation history and refreshes
// LastActivity. The history is append-only.
func (s *Session) Append(content, sender string) {
	s.History = append(s.History, Message{
		Content:   content,
		Sender:    sender,
		Type:      MessageTypeText,
		Timestamp: time.Now().UTC(),
	})
	s.Touch()
}

// AddLine appends a complete draft to the partial order. Incomplete drafts
// are never added.
func (s *Session) AddLine(d LineDraft) bool {
	if !d.Complete() {
		return false
	}
	s.PartialOrder = append(s.PartialOrder, d)
	return true
}
