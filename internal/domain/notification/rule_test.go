package notification

import (
	"testing"

	"github.com/Changwoon-overview/Socialtalk/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idSet(ids ...int64) map[int64]struct{} {
	s := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func TestFindMatchingRule(t *testing.T) {
	products := idSet(10, 11)
	categories := idSet(100, 101)

	t.Run("status scoped", func(t *testing.T) {
		rules := []*Rule{
			{ID: "a", ConditionType: ConditionProduct, ConditionValues: []int64{10}, OrderStatus: "wc-processing"},
			{ID: "b", ConditionType: ConditionProduct, ConditionValues: []int64{10}, OrderStatus: "wc-completed"},
		}
		got := FindMatchingRule(rules, "wc-completed", products, categories)
		require.NotNil(t, got)
		assert.Equal(t, "b", got.ID)
	})

	t.Run("first match wins", func(t *testing.T) {
		rules := []*Rule{
			{ID: "first", ConditionType: ConditionCategory, ConditionValues: []int64{101}, OrderStatus: "wc-completed"},
			{ID: "second", ConditionType: ConditionProduct, ConditionValues: []int64{10}, OrderStatus: "wc-completed"},
		}
		got := FindMatchingRule(rules, "wc-completed", products, categories)
		require.NotNil(t, got)
		assert.Equal(t, "first", got.ID)
	})

	t.Run("status match but no intersection falls through", func(t *testing.T) {
		rules := []*Rule{
			{ID: "miss", ConditionType: ConditionProduct, ConditionValues: []int64{99}, OrderStatus: "wc-completed"},
			{ID: "hit", ConditionType: ConditionCategory, ConditionValues: []int64{5, 100}, OrderStatus: "wc-completed"},
		}
		got := FindMatchingRule(rules, "wc-completed", products, categories)
		require.NotNil(t, got)
		assert.Equal(t, "hit", got.ID)
	})

	t.Run("product ids are not category ids", func(t *testing.T) {
		rules := []*Rule{
			{ID: "cat", ConditionType: ConditionCategory, ConditionValues: []int64{10}, OrderStatus: "wc-completed"},
		}
		assert.Nil(t, FindMatchingRule(rules, "wc-completed", products, categories))
	})

	t.Run("no rules", func(t *testing.T) {
		assert.Nil(t, FindMatchingRule(nil, "wc-completed", products, categories))
	})
}

func TestOrderIDSets(t *testing.T) {
	products, categories := OrderIDSets(testOrder().Items())
	assert.Equal(t, idSet(10, 11), products)
	assert.Equal(t, idSet(100, 101, 102), categories)
}

func TestRule_Validate(t *testing.T) {
	valid := func() *Rule {
		return &Rule{
			ConditionType:   ConditionProduct,
			ConditionValues: []int64{1},
			OrderStatus:     "wc-completed",
			SMSBody:         "hi",
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(r *Rule)
	}{
		{"unknown condition type", func(r *Rule) { r.ConditionType = "tag" }},
		{"missing status", func(r *Rule) { r.OrderStatus = " " }},
		{"no condition values", func(r *Rule) { r.ConditionValues = nil }},
		{"no template", func(r *Rule) { r.SMSBody = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)

			err := r.Validate()
			var validation *common.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}

	t.Run("alimtalk code alone is enough", func(t *testing.T) {
		r := valid()
		r.SMSBody = ""
		r.AlimtalkTemplateCode = "TPL9"
		assert.NoError(t, r.Validate())
	})
}
