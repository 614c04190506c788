package conversation

import (
	"context"
	"strings"
	"time"

	logx "github.com/vngglass/orderchat/pkg/logger"
)

// Keyword literals the local heuristics match on, case-insensitively.
const (
	keywordPlaceOrder   = "đặt hàng"
	keywordContactStaff = "nhân viên"
	keywordFinishOrder  = "kết thúc"
	keywordConfirm      = "xác nhận"
	keywordAgree        = "đồng ý"
	keywordBack         = "quay lại"
)

var cancelKeywords = []string{"hủy", "thôi", "cancel"}

// Classifier delegates intent classification to an external NLU collaborator.
type Classifier interface {
	Classify(ctx context.Context, state State, text string) (Intent, error)
}

// Resolver normalises inbound text into the closed intent set. The external
// classifier runs first under a bounded timeout; on error, timeout or when
// no classifier is configured it degrades to the local heuristics.
// For a fixed (state, text) pair the heuristic path is deterministic, so
// duplicate webhook deliveries replay identically.
type Resolver struct {
	classifier Classifier
	timeout    time.Duration
}

// NewResolver wires the resolver. classifier may be nil, in which case only
// the heuristics run.
func NewResolver(classifier Classifier, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{classifier: classifier, timeout: timeout}
}

// Resolve classifies one inbound message given the current state.
func (r *Resolver) Resolve(ctx context.Context, state State, text string) Intent {
	if r.classifier != nil {
		cctx, cancel := context.WithTimeout(ctx, r.timeout)
		intent, err := r.classifier.Classify(cctx, state, text)
		cancel()
		if err == nil && intent.IsValid() {
			return intent
		}
		if err != nil {
			logx.Warn().Err(err).Str("state", state.String()).Msg("classifier unavailable, falling back to heuristics")
		}
	}
	return resolveHeuristic(state, text)
}

// resolveHeuristic is the pure local fallback. It mirrors the command words
// of the chat storefront and, inside the collecting states, interprets any
// remaining text as the payload the state is waiting for so the state
// machine can judge validity itself.
func resolveHeuristic(state State, text string) Intent {
	trimmed := strings.TrimSpace(text)
	folded := strings.ToLower(trimmed)

	for _, kw := range cancelKeywords {
		if folded == kw {
			return IntentCancelOrder
		}
	}
	if folded == keywordContactStaff {
		return IntentContactStaff
	}
	if folded == keywordPlaceOrder {
		return IntentPlaceOrder
	}

	switch state {
	case StateContactingStaff:
		if folded == keywordBack || folded == keywordFinishOrder {
			return IntentEndStaffContact
		}
		return IntentUnknown

	case StateWaitingForPhone:
		// Validity is judged by the machine; everything here is a phone attempt.
		return IntentPhoneNumber

	case StateWaitingForProductInfo:
		if folded == keywordFinishOrder {
			return IntentFinishOrder
		}
		return IntentAddOrderDetail

	case StateConfirming:
		if folded == keywordConfirm || folded == keywordAgree {
			return IntentConfirmOrder
		}
		if _, ok := ExtractOrderLine(trimmed); ok {
			return IntentAddOrderDetail
		}
		return IntentUnknown
	}

	// Stateless fallback for New and anything else.
	if _, ok := ExtractPhone(trimmed); ok {
		return IntentPhoneNumber
	}
	if _, ok := ExtractOrderLine(trimmed); ok {
		return IntentAddOrderDetail
	}
	if folded == keywordFinishOrder {
		return IntentFinishOrder
	}
	return IntentUnknown
}
