package conversation

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	logx "github.com/vngglass/orderchat/pkg/logger"
)

// Customer is the slice of the catalog's customer record the engine needs.
type Customer struct {
	ID   uint
	Name string
}

// CustomerDirectory resolves a customer by phone number. A nil customer with
// a nil error means no match.
type CustomerDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*Customer, error)
}

// OrderSummary is the structured result of a finalized order, used to build
// the confirmation reply.
type OrderSummary struct {
	OrderCode string
	Lines     []LineDraft
	Total     decimal.Decimal
}

// Finalizer converts the session's drafts into a persisted sale order as a
// single atomic unit. On error nothing is committed.
type Finalizer interface {
	Finalize(ctx context.Context, sess *Session) (*OrderSummary, error)
}

// LineError reports the draft that could not be resolved against the catalog
// during finalization.
type LineError struct {
	Draft  LineDraft
	Reason string
}

func (e *LineError) Error() string {
	return "order line " + e.Draft.ProductCode + " " + e.Reason
}

// AsLineError unwraps a LineError from an error chain.
func AsLineError(err error) (*LineError, bool) {
	var le *LineError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// Turn is the outcome of applying one inbound message to a session.
type Turn struct {
	Intent Intent
	Reply  string
	// Finalized is set only when this turn completed the order.
	Finalized *OrderSummary
}

// Engine is the conversation state machine. Given (current state, intent,
// extracted payload) it computes the next state, the mutation to apply to
// the partial order, and the outbound reply. It mutates only the session it
// is handed; persisting the mutated session is the caller's job, which keeps
// the load-mutate-save all-or-nothing per message.
type Engine struct {
	resolver   *Resolver
	directory  CustomerDirectory
	finalizer  Finalizer
	maxRetries int
}

// NewEngine wires the state machine. maxRetries is the per-state unknown-
// intent budget before the conversation escalates to staff hand-off.
func NewEngine(resolver *Resolver, directory CustomerDirectory, finalizer Finalizer, maxRetries int) *Engine {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Engine{
		resolver:   resolver,
		directory:  directory,
		finalizer:  finalizer,
		maxRetries: maxRetries,
	}
}

// Process applies one inbound text message to the session and returns the
// reply to send. Every turn appends both sides of the exchange to the
// history and refreshes LastActivity.
func (e *Engine) Process(ctx context.Context, sess *Session, text string) *Turn {
	sess.MessageCount++
	sess.Append(text, SenderUser)

	intent := e.resolver.Resolve(ctx, sess.State, text)

	turn := e.apply(ctx, sess, intent, text)
	turn.Intent = intent

	sess.Append(turn.Reply, SenderBot)

	logx.Debug().
		Str("user_id", sess.UserID).
		Str("intent", intent.String()).
		Str("state", sess.State.String()).
		Msg("conversation turn applied")
	return turn
}

func (e *Engine) apply(ctx context.Context, sess *Session, intent Intent, text string) *Turn {
	// Cancel wins from every non-terminal state.
	if intent == IntentCancelOrder && !sess.State.IsTerminal() {
		sess.State = StateCancelled
		sess.PartialOrder = nil
		return &Turn{Reply: replyCancelled}
	}
	// Staff hand-off is reachable from every non-terminal state.
	if intent == IntentContactStaff && !sess.State.IsTerminal() {
		sess.State = StateContactingStaff
		return &Turn{Reply: replyStaffContact}
	}

	switch sess.State {
	case StateNew:
		if intent == IntentPlaceOrder {
			sess.State = StateWaitingForPhone
			sess.RetryCount = 0
			return &Turn{Reply: replyAskPhone}
		}

	case StateWaitingForPhone:
		if intent == IntentPhoneNumber {
			return e.applyPhone(ctx, sess, text)
		}

	case StateWaitingForProductInfo:
		switch intent {
		case IntentAddOrderDetail:
			return e.applyOrderLines(sess, text)
		case IntentFinishOrder:
			if len(sess.PartialOrder) == 0 {
				return &Turn{Reply: replyNoProducts}
			}
			sess.State = StateConfirming
			sess.RetryCount = 0
			return &Turn{Reply: replySummary(sess)}
		}

	case StateConfirming:
		switch intent {
		case IntentConfirmOrder:
			return e.applyConfirm(ctx, sess)
		case IntentAddOrderDetail:
			// Edit before confirm: resume collecting.
			sess.State = StateWaitingForProductInfo
			return e.applyOrderLines(sess, text)
		}

	case StateContactingStaff:
		if intent == IntentEndStaffContact {
			sess.State = StateNew
			sess.RetryCount = 0
			return &Turn{Reply: replyStaffEnded}
		}
	}

	return e.applyUnknown(sess)
}

func (e *Engine) applyPhone(ctx context.Context, sess *Session, text string) *Turn {
	phone, ok := ExtractPhone(text)
	if !ok {
		// Input-format error: re-prompt, no state change.
		return &Turn{Reply: replyInvalidPhone}
	}

	customer, err := e.directory.FindByPhone(ctx, phone)
	if err != nil {
		logx.Error().Err(err).Str("user_id", sess.UserID).Msg("customer lookup failed")
		sess.LastError = err.Error()
		return &Turn{Reply: replySystemError}
	}
	if customer == nil {
		return &Turn{Reply: replyCustomerNotFound}
	}

	sess.CustomerPhone = phone
	sess.CustomerID = &customer.ID
	sess.CustomerName = customer.Name
	sess.State = StateWaitingForProductInfo
	sess.RetryCount = 0
	if sess.PartialOrder == nil {
		sess.PartialOrder = []LineDraft{}
	}
	return &Turn{Reply: replyCustomerFound(customer.Name)}
}

func (e *Engine) applyOrderLines(sess *Session, text string) *Turn {
	drafts, rejected := ExtractOrderLines(text)
	if len(drafts) == 0 {
		return &Turn{Reply: replyInvalidProduct}
	}

	for _, d := range drafts {
		sess.AddLine(d)
	}
	return &Turn{Reply: replyLinesAdded(drafts, rejected)}
}

func (e *Engine) applyConfirm(ctx context.Context, sess *Session) *Turn {
	summary, err := e.finalizer.Finalize(ctx, sess)
	if err != nil {
		// The order is not committed; stay in Confirming with progress intact.
		logx.Error().Err(err).Str("user_id", sess.UserID).Msg("order finalization failed")
		sess.LastError = err.Error()
		return &Turn{Reply: replyFinalizeFailed(err)}
	}

	sess.State = StateCompleted
	sess.LastError = ""
	return &Turn{Reply: replyCompleted(summary), Finalized: summary}
}

func (e *Engine) applyUnknown(sess *Session) *Turn {
	sess.RetryCount++
	if sess.RetryCount > e.maxRetries && !sess.State.IsTerminal() {
		sess.State = StateContactingStaff
		sess.RetryCount = 0
		return &Turn{Reply: replyEscalated + replyStaffContact}
	}
	return &Turn{Reply: contextHelp(sess.State)}
}
