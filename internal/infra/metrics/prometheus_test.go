package metrics

import (
	"testing"
	"time"

	"github.com/Changwoon-overview/Socialtalk/internal/domain/notification"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_RecordSend(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.RecordSend(notification.ChannelAlimtalk, notification.StatusSuccess, 200*time.Millisecond)
	r.RecordSend(notification.ChannelAlimtalk, notification.StatusSuccess, time.Second)
	r.RecordSend(notification.ChannelLMS, notification.StatusFailure, 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.sent.WithLabelValues("Alimtalk", "Success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sent.WithLabelValues("LMS", "Failure")))

	n, err := testutil.GatherAndCount(reg, "socialtalk_send_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one histogram series per channel")
}
