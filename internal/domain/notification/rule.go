package notification

import (
	"strings"
	"time"

	"github.com/Changwoon-overview/Socialtalk/internal/common"
)

// ConditionType selects what a rule's condition values refer to.
type ConditionType string

const (
	ConditionProduct  ConditionType = "product"
	ConditionCategory ConditionType = "category"
)

// Rule routes orders containing specific products or categories to bespoke
// templates for one order status. Rules are evaluated in Position order and
// the first match wins.
type Rule struct {
	ID                   string        `json:"id"`
	Position             int           `json:"position"`
	ConditionType        ConditionType `json:"condition_type" binding:"required"`
	ConditionValues      []int64       `json:"condition_values"`
	OrderStatus          string        `json:"order_status" binding:"required"`
	SMSBody              string        `json:"sms_body,omitempty"`
	AlimtalkTemplateCode string        `json:"alimtalk_template_code,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
}

// Validate enforces the save-time precondition for a rule.
func (r *Rule) Validate() error {
	switch r.ConditionType {
	case ConditionProduct, ConditionCategory:
	default:
		return common.NewValidationError("condition_type must be product or category")
	}
	if strings.TrimSpace(r.OrderStatus) == "" {
		return common.NewValidationError("order_status is required")
	}
	if len(r.ConditionValues) == 0 {
		return common.NewValidationError("at least one condition value is required")
	}
	if strings.TrimSpace(r.SMSBody) == "" && strings.TrimSpace(r.AlimtalkTemplateCode) == "" {
		return common.NewValidationError("either an SMS body or an Alimtalk template code is required")
	}
	return nil
}

// FindMatchingRule returns the first rule, in list order, whose status equals
// orderStatus and whose condition intersects the order's products or categories.
func FindMatchingRule(rules []*Rule, orderStatus string, productIDs, categoryIDs map[int64]struct{}) *Rule {
	for _, rule := range rules {
		if rule.OrderStatus != orderStatus {
			continue
		}

		var ids map[int64]struct{}
		switch rule.ConditionType {
		case ConditionProduct:
			ids = productIDs
		case ConditionCategory:
			ids = categoryIDs
		default:
			continue
		}

		for _, v := range rule.ConditionValues {
			if _, ok := ids[v]; ok {
				return rule
			}
		}
	}
	return nil
}

// OrderIDSets collects the distinct product and category ids of an order's line items.
func OrderIDSets(items []LineItem) (productIDs, categoryIDs map[int64]struct{}) {
	productIDs = make(map[int64]struct{}, len(items))
	categoryIDs = make(map[int64]struct{})
	for _, item := range items {
		productIDs[item.ProductID] = struct{}{}
		for _, c := range item.CategoryIDs {
			categoryIDs[c] = struct{}{}
		}
	}
	return productIDs, categoryIDs
}
