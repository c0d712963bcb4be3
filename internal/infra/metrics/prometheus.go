package metrics

import (
	"time"

	"github.com/Changwoon-overview/Socialtalk/internal/domain/notification"

	"github.com/prometheus/client_golang/prometheus"
)

var _ notification.SendRecorder = (*Recorder)(nil)

// Recorder exports channel send counts and latencies to Prometheus.
type Recorder struct {
	sent     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		sent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "socialtalk_messages_sent_total",
				Help: "Total number of channel send attempts",
			},
			[]string{"channel", "status"}, // status: Success|Failure
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "socialtalk_send_duration_seconds",
				Help:    "Channel send duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 45},
			},
			[]string{"channel"},
		),
	}
	reg.MustRegister(r.sent, r.duration)
	return r
}

// RecordSend counts one attempt and observes its latency.
func (r *Recorder) RecordSend(channel notification.ChannelType, status notification.DeliveryStatus, elapsed time.Duration) {
	r.sent.WithLabelValues(string(channel), string(status)).Inc()
	r.duration.WithLabelValues(string(channel)).Observe(elapsed.Seconds())
}
