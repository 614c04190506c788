package nlu

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vngglass/orderchat/internal/conversation"
)

type stubChatModel struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (s *stubChatModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	s.seen = input
	if s.err != nil {
		return nil, s.err
	}
	return schema.AssistantMessage(s.reply, nil), nil
}

func (s *stubChatModel) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func TestClassifyParsesLabel(t *testing.T) {
	stub := &stubChatModel{reply: "add_order_detail"}
	c := newWithModel(stub)

	intent, err := c.Classify(context.Background(), conversation.StateWaitingForProductInfo, "EI90 MB 1000*2000*25mm 2")
	require.NoError(t, err)
	assert.Equal(t, conversation.IntentAddOrderDetail, intent)

	require.NotEmpty(t, stub.seen)
	assert.Contains(t, stub.seen[0].Content, "waiting_for_product_info")
	assert.Contains(t, stub.seen[0].Content, "EI90 MB 1000*2000*25mm 2")
}

func TestClassifyTrimsAndLowercases(t *testing.T) {
	c := newWithModel(&stubChatModel{reply: "  Confirm_Order\n"})

	intent, err := c.Classify(context.Background(), conversation.StateConfirming, "Đồng ý")
	require.NoError(t, err)
	assert.Equal(t, conversation.IntentConfirmOrder, intent)
}

func TestClassifyRejectsUnknownLabel(t *testing.T) {
	c := newWithModel(&stubChatModel{reply: "buy_a_boat"})

	_, err := c.Classify(context.Background(), conversation.StateNew, "hello")
	assert.Error(t, err)
}

func TestClassifyPropagatesModelError(t *testing.T) {
	c := newWithModel(&stubChatModel{err: errors.New("quota exceeded")})

	_, err := c.Classify(context.Background(), conversation.StateNew, "hello")
	assert.Error(t, err)
}
