package notification

import (
	"log/slog"
	"maps"
	"regexp"
	"slices"
)

// placeholderPattern matches {identifier} tokens in direct-text templates.
var placeholderPattern = regexp.MustCompile(`\{([^{}\s]+)\}`)

// VariableMapping maps internal variable names to the external keys expected
// by structured-variable channels (Alimtalk).
type VariableMapping map[string]string

// DefaultVariableMapping is the built-in internal → Alimtalk key table.
func DefaultVariableMapping() VariableMapping {
	return VariableMapping{
		"order_id":                  "주문ID",
		"order_number":              "주문번호",
		"order_date":                "주문일자",
		"order_total":               "주문금액",
		"customer_name":             "고객명",
		"customer_fullname":         "고객성명",
		"billing_phone":             "연락처",
		"shop_name":                 "쇼핑몰명",
		"subscription_id":           "구독번호",
		"subscription_status":       "구독상태",
		"subscription_start_date":   "구독시작일",
		"subscription_next_payment": "다음결제일",
		"user_id":                   "회원번호",
		"user_login":                "아이디",
		"user_email":                "이메일",
		"user_display_name":         "회원명",
		"new_role":                  "변경등급",
		"old_role":                  "이전등급",
	}
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithVariableMapping overrides entries of the default mapping table.
func WithVariableMapping(m VariableMapping) RendererOption {
	return func(r *Renderer) {
		for k, v := range m {
			r.mapping[k] = v
		}
	}
}

// Renderer resolves template variables against an event context.
type Renderer struct {
	mapping VariableMapping
}

// NewRenderer creates a renderer with the default mapping table plus any overrides.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{mapping: DefaultVariableMapping()}
	for _, opt := range opts {
		opt(r)
	}
	r.warnConflicts()
	return r
}

// WithMapping returns a copy of the renderer with extra mapping overrides applied.
// The receiver is not modified.
func (r *Renderer) WithMapping(m VariableMapping) *Renderer {
	if len(m) == 0 {
		return r
	}
	cp := &Renderer{mapping: make(VariableMapping, len(r.mapping)+len(m))}
	maps.Copy(cp.mapping, r.mapping)
	maps.Copy(cp.mapping, m)
	cp.warnConflicts()
	return cp
}

// ConflictingTargets returns the external keys that more than one internal
// name maps to, sorted.
func (m VariableMapping) ConflictingTargets() []string {
	owners := make(map[string]int, len(m))
	for _, ext := range m {
		if ext != "" {
			owners[ext]++
		}
	}
	var conflicts []string
	for ext, n := range owners {
		if n > 1 {
			conflicts = append(conflicts, ext)
		}
	}
	slices.Sort(conflicts)
	return conflicts
}

func (r *Renderer) warnConflicts() {
	if conflicts := r.mapping.ConflictingTargets(); len(conflicts) > 0 {
		slog.Warn("variable mapping sends several names to one external key; the last name in sorted order wins",
			"external_keys", conflicts,
		)
	}
}

// RenderText replaces {name} tokens. Values in extra take precedence over the
// context table; unknown tokens are left as they are.
func (r *Renderer) RenderText(tmpl string, ctx EventContext, shopName string, extra map[string]string) string {
	vars := resolveVariables(ctx, shopName, extra)
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(token string) string {
		name := token[1 : len(token)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		return token
	})
}

// ExtractStructuredVars resolves every variable of the context (plus extra)
// and keys it by its external name. Names without a mapping are kept as is.
// Extra values are applied after the context table, so they win even when
// given under the external key. Within each layer names are applied in sorted
// order, making collisions deterministic.
func (r *Renderer) ExtractStructuredVars(ctx EventContext, shopName string, extra map[string]string) map[string]string {
	table := contextVariables(ctx, shopName)
	out := make(map[string]string, len(table)+len(extra))
	r.putExternal(out, table)
	r.putExternal(out, extra)
	return out
}

func (r *Renderer) putExternal(out, vars map[string]string) {
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		out[r.externalName(name)] = vars[name]
	}
}

func (r *Renderer) externalName(name string) string {
	if ext, ok := r.mapping[name]; ok && ext != "" {
		return ext
	}
	return name
}

func contextVariables(ctx EventContext, shopName string) map[string]string {
	if ctx == nil {
		return map[string]string{"shop_name": shopName}
	}
	return ctx.variables(shopName)
}

func resolveVariables(ctx EventContext, shopName string, extra map[string]string) map[string]string {
	vars := contextVariables(ctx, shopName)
	maps.Copy(vars, extra)
	return vars
}
