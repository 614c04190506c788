package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubClassifier struct {
	intent Intent
	err    error
	calls  int
}

func (s *stubClassifier) Classify(_ context.Context, _ State, _ string) (Intent, error) {
	s.calls++
	return s.intent, s.err
}

func TestResolveHeuristic(t *testing.T) {
	tests := []struct {
		name  string
		state State
		text  string
		want  Intent
	}{
		{"place order keyword", StateNew, "Đặt hàng", IntentPlaceOrder},
		{"place order lowercase", StateNew, "đặt hàng", IntentPlaceOrder},
		{"staff keyword anywhere", StateWaitingForProductInfo, "Nhân viên", IntentContactStaff},
		{"cancel keyword", StateConfirming, "Hủy", IntentCancelOrder},
		{"cancel alias", StateWaitingForPhone, "thôi", IntentCancelOrder},
		{"cancel english", StateConfirming, "cancel", IntentCancelOrder},
		{"phone state treats text as phone", StateWaitingForPhone, "0901234567", IntentPhoneNumber},
		{"phone state even for junk", StateWaitingForPhone, "my number maybe", IntentPhoneNumber},
		{"product state yields detail", StateWaitingForProductInfo, "EI90 MB 1000*2000*25mm 2", IntentAddOrderDetail},
		{"product state finish keyword", StateWaitingForProductInfo, "Kết thúc", IntentFinishOrder},
		{"confirming accepts confirm", StateConfirming, "Xác nhận", IntentConfirmOrder},
		{"confirming accepts agree", StateConfirming, "Đồng ý", IntentConfirmOrder},
		{"confirming line edit", StateConfirming, "EI60 SD 500*600*10mm 1", IntentAddOrderDetail},
		{"confirming junk unknown", StateConfirming, "ờm", IntentUnknown},
		{"staff state back keyword", StateContactingStaff, "Quay lại", IntentEndStaffContact},
		{"staff state junk unknown", StateContactingStaff, "hello", IntentUnknown},
		{"new state phone shape", StateNew, "0901234567", IntentPhoneNumber},
		{"new state line shape", StateNew, "EI90 MB 1000*2000*25mm 2", IntentAddOrderDetail},
		{"new state junk", StateNew, "xin chào", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveHeuristic(tt.state, tt.text))
		})
	}
}

func TestResolveHeuristicDeterministic(t *testing.T) {
	// Duplicate deliveries must classify identically.
	for i := 0; i < 5; i++ {
		assert.Equal(t, IntentAddOrderDetail, resolveHeuristic(StateWaitingForProductInfo, "EI90 MB 1000*2000*25mm 2"))
	}
}

func TestResolverPrefersClassifier(t *testing.T) {
	cls := &stubClassifier{intent: IntentContactStaff}
	r := NewResolver(cls, time.Second)

	got := r.Resolve(context.Background(), StateNew, "tôi cần người thật")
	assert.Equal(t, IntentContactStaff, got)
	assert.Equal(t, 1, cls.calls)
}

func TestResolverFallsBackOnClassifierError(t *testing.T) {
	cls := &stubClassifier{err: errors.New("model unavailable")}
	r := NewResolver(cls, time.Second)

	got := r.Resolve(context.Background(), StateWaitingForProductInfo, "EI90 MB 1000*2000*25mm 2")
	assert.Equal(t, IntentAddOrderDetail, got)
}

func TestResolverWithoutClassifier(t *testing.T) {
	r := NewResolver(nil, 0)
	assert.Equal(t, IntentPlaceOrder, r.Resolve(context.Background(), StateNew, "đặt hàng"))
}
