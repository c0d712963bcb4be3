package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_RenderText(t *testing.T) {
	r := NewRenderer()
	ctx := OrderContext{Order: testOrder()}

	t.Run("no placeholders is identity", func(t *testing.T) {
		text := "주문이 완료되었습니다. 감사합니다."
		assert.Equal(t, text, r.RenderText(text, ctx, "소셜샵", nil))
	})

	t.Run("order variables", func(t *testing.T) {
		got := r.RenderText("[{shop_name}] {customer_name}님 주문 {order_number} ({order_total}) {order_date}", ctx, "소셜샵", nil)
		assert.Equal(t, "[소셜샵] 길동님 주문 1234 (₩50,000) 2024-03-09", got)
	})

	t.Run("unknown token passes through", func(t *testing.T) {
		assert.Equal(t, "Hi {unknown_key}", r.RenderText("Hi {unknown_key}", ctx, "", nil))
	})

	t.Run("extra wins over context", func(t *testing.T) {
		got := r.RenderText("{customer_name} {tracking}", ctx, "", map[string]string{
			"customer_name": "VIP",
			"tracking":      "CJ123",
		})
		assert.Equal(t, "VIP CJ123", got)
	})

	t.Run("braces with spaces are not tokens", func(t *testing.T) {
		assert.Equal(t, "{ order_id }", r.RenderText("{ order_id }", ctx, "", nil))
	})

	t.Run("nil context still resolves shop name and extra", func(t *testing.T) {
		got := r.RenderText("{shop_name}: {current_points}P", nil, "소셜샵", map[string]string{"current_points": "500"})
		assert.Equal(t, "소셜샵: 500P", got)
	})
}

func TestRenderer_SubscriptionFallsBackToParentOrder(t *testing.T) {
	r := NewRenderer()
	sub := &SubscriptionSnapshot{
		SubscriptionID: 77,
		Status:         "active",
		DateCreated:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		NextPayment:    time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		FirstName:      "철수",
		Phone:          "01099998888",
		ParentOrder:    testOrder(),
	}
	ctx := SubscriptionContext{Subscription: sub}

	got := r.RenderText("{subscription_id}/{subscription_status}/{subscription_next_payment}/{order_number}/{customer_name}", ctx, "", nil)
	assert.Equal(t, "77/active/2024-02-02/1234/철수", got)

	t.Run("without parent order", func(t *testing.T) {
		orphan := *sub
		orphan.ParentOrder = nil
		got := r.RenderText("{subscription_id} {order_number}", SubscriptionContext{Subscription: &orphan}, "", nil)
		assert.Equal(t, "77 {order_number}", got)
	})
}

func TestRenderer_UserVariables(t *testing.T) {
	r := NewRenderer()
	ctx := UserContext{User: &UserSnapshot{UserID: 5, Username: "hong", Mail: "hong@example.com", Display: "홍길동", Phone: "0101"}}

	got := r.RenderText("{user_display_name}({user_login}) {new_role}", ctx, "", map[string]string{"new_role": "VIP"})
	assert.Equal(t, "홍길동(hong) VIP", got)
}

func TestRenderer_ExtractStructuredVars(t *testing.T) {
	ctx := OrderContext{Order: testOrder()}

	t.Run("mapped names replace internal names", func(t *testing.T) {
		vars := NewRenderer().ExtractStructuredVars(ctx, "소셜샵", map[string]string{"tracking": "CJ123"})

		assert.Equal(t, "길동", vars["고객명"])
		assert.Equal(t, "1234", vars["주문번호"])
		assert.Equal(t, "소셜샵", vars["쇼핑몰명"])
		assert.Equal(t, "CJ123", vars["tracking"])

		mapping := DefaultVariableMapping()
		for internal := range mapping {
			_, leaked := vars[internal]
			assert.False(t, leaked, "internal key %q leaked", internal)
		}
	})

	t.Run("mapping override", func(t *testing.T) {
		r := NewRenderer(WithVariableMapping(VariableMapping{"customer_name": "이름"}))
		vars := r.ExtractStructuredVars(ctx, "", nil)
		assert.Equal(t, "길동", vars["이름"])
		assert.NotContains(t, vars, "고객명")
	})

	t.Run("WithMapping leaves the receiver untouched", func(t *testing.T) {
		base := NewRenderer()
		derived := base.WithMapping(VariableMapping{"order_number": "번호"})

		require.NotSame(t, base, derived)
		assert.Contains(t, derived.ExtractStructuredVars(ctx, "", nil), "번호")
		assert.Contains(t, base.ExtractStructuredVars(ctx, "", nil), "주문번호")
	})

	t.Run("extra under the external key wins every time", func(t *testing.T) {
		r := NewRenderer()
		for range 200 {
			vars := r.ExtractStructuredVars(ctx, "", map[string]string{"고객명": "Override"})
			require.Equal(t, "Override", vars["고객명"])
		}
	})

	t.Run("extra under the internal name wins over the context", func(t *testing.T) {
		vars := NewRenderer().ExtractStructuredVars(ctx, "", map[string]string{"customer_name": "VIP"})
		assert.Equal(t, "VIP", vars["고객명"])
	})

	t.Run("colliding mapping resolves the same way on every call", func(t *testing.T) {
		r := NewRenderer(WithVariableMapping(VariableMapping{"customer_fullname": "고객명"}))
		for range 200 {
			vars := r.ExtractStructuredVars(ctx, "", nil)
			// customer_name sorts after customer_fullname and is applied last.
			require.Equal(t, "길동", vars["고객명"])
		}
	})
}

func TestVariableMapping_ConflictingTargets(t *testing.T) {
	assert.Empty(t, DefaultVariableMapping().ConflictingTargets())

	m := DefaultVariableMapping()
	m["customer_fullname"] = "고객명"
	m["user_login"] = "회원명"
	assert.Equal(t, []string{"고객명", "회원명"}, m.ConflictingTargets())
}
