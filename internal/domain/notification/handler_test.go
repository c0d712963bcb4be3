package notification

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	payloads []*EventPayload
	err      error
}

func (f *fakeEnqueuer) EnqueueDispatch(p *EventPayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

type handlerFixture struct {
	*dispatcherFixture
	enqueuer *fakeEnqueuer
	router   *gin.Engine
}

func newHandlerFixture(settings *Settings, rules ...*Rule) *handlerFixture {
	gin.SetMode(gin.TestMode)

	df := newDispatcherFixture(settings, rules...)
	enq := &fakeEnqueuer{}
	svc := NewService(df.d, df.rules, df.log, enq)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return &handlerFixture{dispatcherFixture: df, enqueuer: enq, router: r}
}

func (f *handlerFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandler_DispatchEvent(t *testing.T) {
	s := baseSettings()
	s.AlimtalkTemplates["wc-completed"] = TemplateSetting{Content: "TPL001"}
	f := newHandlerFixture(s)

	w := f.do(http.MethodPost, "/api/v1/events", EventPayload{
		Kind:      KindOrderStatusChanged,
		StatusKey: "wc-completed",
		Order:     testOrder(),
	})

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	var data struct {
		Entries []DeliveryLogEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Entries, 1)
	assert.Equal(t, ChannelAlimtalk, data.Entries[0].ChannelType)
	assert.Equal(t, "TPL001", data.Entries[0].TemplateCode)
}

func TestHandler_DispatchEvent_Validation(t *testing.T) {
	f := newHandlerFixture(baseSettings())

	t.Run("malformed json", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/events", `{"kind":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing context object", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/events", EventPayload{Kind: KindUserRegistered, StatusKey: StatusKeyUserRegister})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeEnvelope(t, w).Error.Message, "user is required")
	})
}

func TestHandler_DispatchEvent_SettingsFailure(t *testing.T) {
	f := newHandlerFixture(nil)
	f.settings.err = errBoom

	w := f.do(http.MethodPost, "/api/v1/events", EventPayload{
		Kind:      KindOrderStatusChanged,
		StatusKey: "wc-completed",
		Order:     testOrder(),
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_EnqueueEvent(t *testing.T) {
	f := newHandlerFixture(baseSettings())

	w := f.do(http.MethodPost, "/api/v1/events/async", EventPayload{
		Kind:      KindUserRegistered,
		StatusKey: StatusKeyUserRegister,
		User:      &UserSnapshot{UserID: 1, Phone: "010"},
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, f.enqueuer.payloads, 1)
	assert.Equal(t, int64(1), f.enqueuer.payloads[0].User.UserID)
	assert.Empty(t, f.sms.sent, "async intake does not send inline")

	t.Run("queue failure", func(t *testing.T) {
		f.enqueuer.err = errors.New("redis down")
		w := f.do(http.MethodPost, "/api/v1/events/async", EventPayload{
			Kind:      KindUserRegistered,
			StatusKey: StatusKeyUserRegister,
			User:      &UserSnapshot{UserID: 1},
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandler_EnqueueEvent_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	df := newDispatcherFixture(baseSettings())
	r := gin.New()
	NewHandler(NewService(df.d, df.rules, df.log, nil)).RegisterRoutes(r.Group("/api/v1"))
	f := &handlerFixture{dispatcherFixture: df, router: r}

	w := f.do(http.MethodPost, "/api/v1/events/async", EventPayload{
		Kind:      KindUserRegistered,
		StatusKey: StatusKeyUserRegister,
		User:      &UserSnapshot{UserID: 1},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Rules(t *testing.T) {
	f := newHandlerFixture(baseSettings(), &Rule{ID: "existing", ConditionType: ConditionProduct, ConditionValues: []int64{1}, OrderStatus: "wc-completed", SMSBody: "x"})

	t.Run("list", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/rules", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var data struct {
			Rules []Rule `json:"rules"`
		}
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &data))
		require.Len(t, data.Rules, 1)
		assert.Equal(t, "existing", data.Rules[0].ID)
	})

	t.Run("create", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/rules", map[string]any{
			"id":                     "client-chosen",
			"condition_type":         "category",
			"condition_values":       []int64{100},
			"order_status":           "wc-completed",
			"alimtalk_template_code": "TPL_CAT",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var created Rule
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &created))
		assert.Equal(t, "rule-new", created.ID)
		assert.Len(t, f.rules.created, 1)
	})

	t.Run("create without template is rejected", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/rules", map[string]any{
			"condition_type":   "product",
			"condition_values": []int64{1},
			"order_status":     "wc-completed",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Len(t, f.rules.created, 1)
	})

	t.Run("create without condition values is rejected", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/v1/rules", map[string]any{
			"condition_type": "product",
			"order_status":   "wc-completed",
			"sms_body":       "hi",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete keeps other ids", func(t *testing.T) {
		w := f.do(http.MethodDelete, "/api/v1/rules/existing", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, f.rules.rules, 1)
		assert.Equal(t, "rule-new", f.rules.rules[0].ID)
	})

	t.Run("delete unknown id", func(t *testing.T) {
		w := f.do(http.MethodDelete, "/api/v1/rules/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_ListLogs(t *testing.T) {
	f := newHandlerFixture(baseSettings())
	f.log.entries = []*DeliveryLogEntry{{ID: 1, Recipient: "010", Status: StatusFailure}}

	w := f.do(http.MethodGet, "/api/v1/logs?status=Failure&page_size=500", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Failure", f.log.lastQuery.Status)
	assert.Equal(t, 20, f.log.lastQuery.PageSize)
	assert.Equal(t, 1, f.log.lastQuery.Page)

	var resp LogListResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, StatusFailure, resp.Entries[0].Status)
}
