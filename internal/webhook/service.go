package webhook

import (
	"context"
	"errors"

	"github.com/vngglass/orderchat/internal/conversation"
	"github.com/vngglass/orderchat/internal/session"
	"github.com/vngglass/orderchat/internal/zalo"
	logx "github.com/vngglass/orderchat/pkg/logger"
)

// Processing statuses reported back to the channel.
const (
	StatusProcessed = "processed"
	StatusDuplicate = "duplicate"
	StatusIgnored   = "ignored"
)

// Sender is the outbound side of the pipeline.
type Sender interface {
	Send(ctx context.Context, userID, text string) (zalo.SendResult, error)
}

// Outcome describes what one webhook delivery amounted to.
type Outcome struct {
	Status   string
	Reply    string
	Delivery zalo.SendResult
}

// Service is the webhook pipeline: dedup, per-user serialization,
// load-mutate-save of the conversation, then outbound delivery.
type Service struct {
	store  session.Store
	locks  *session.Keyed
	dedup  *session.Dedup
	engine *conversation.Engine
	sender Sender
}

func NewService(store session.Store, locks *session.Keyed, dedup *session.Dedup, engine *conversation.Engine, sender Sender) *Service {
	return &Service{
		store:  store,
		locks:  locks,
		dedup:  dedup,
		engine: engine,
		sender: sender,
	}
}

// HandleEvent processes one webhook delivery end to end.
//
// The session is persisted before the reply goes out: a delivery failure
// must not roll back a transition that already happened, and the provider's
// redelivery of the same msg_id is absorbed by the dedup set rather than by
// replaying the transition.
func (s *Service) HandleEvent(ctx context.Context, evt *zalo.WebhookEvent) (*Outcome, error) {
	userID := evt.UserID()
	if userID == "" {
		return nil, errors.New("event carries no sender id")
	}

	if !evt.IsText() {
		result, err := s.sender.Send(ctx, userID, conversation.ReplyUnsupportedEvent)
		if err != nil {
			logx.Warn().Err(err).Str("event", evt.EventName).Msg("unsupported-event reply not delivered")
		}
		return &Outcome{Status: StatusIgnored, Reply: conversation.ReplyUnsupportedEvent, Delivery: result}, nil
	}

	if evt.Message.MsgID != "" {
		seen, err := s.dedup.Seen(ctx, evt.Message.MsgID)
		if err != nil {
			return nil, err
		}
		if seen {
			logx.Debug().Str("msg_id", evt.Message.MsgID).Msg("duplicate delivery skipped")
			return &Outcome{Status: StatusDuplicate}, nil
		}
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	sess, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.State.IsTerminal() || !sess.State.IsValid() {
		sess = conversation.NewSession(userID)
	}

	turn := s.engine.Process(ctx, sess, evt.Message.Text)

	if sess.State.IsTerminal() {
		if err := s.store.Delete(ctx, userID); err != nil {
			return nil, err
		}
	} else if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	result, sendErr := s.sender.Send(ctx, userID, turn.Reply)
	if sendErr != nil {
		// The transition is already durable; log and report, never replay.
		logx.Error().Err(sendErr).Str("user_id", userID).Msg("reply delivery failed")
	}

	logx.Info().
		Str("user_id", userID).
		Str("intent", turn.Intent.String()).
		Str("state", sess.State.String()).
		Str("delivery", string(result)).
		Msg("webhook processed")
	return &Outcome{Status: StatusProcessed, Reply: turn.Reply, Delivery: result}, nil
}
