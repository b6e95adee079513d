// Package prom exports signaling engine observability events to Prometheus.
package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saltywire/saltyrtc-go/observability"
)

// NewRegistry returns a fresh Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Handler returns a Prometheus HTTP handler bound to the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Observer exports signaling engine lifecycle events to Prometheus.
type Observer struct {
	handshakesStarted *prometheus.CounterVec
	stagesComplete    *prometheus.CounterVec
	opened            *prometheus.CounterVec
	aborted           *prometheus.CounterVec
	closed            *prometheus.CounterVec
	responderCount    prometheus.Gauge
	dropResponderSent prometheus.Counter
}

// NewObserver registers signaling metrics on the registry.
func NewObserver(reg *prometheus.Registry) *Observer {
	o := &Observer{
		handshakesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saltyrtc_handshakes_started_total",
			Help: "Handshakes started, by role.",
		}, []string{"role"}),
		stagesComplete: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saltyrtc_handshake_stage_complete_total",
			Help: "Handshake stages completed, by role and stage.",
		}, []string{"role", "stage"}),
		opened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saltyrtc_opened_total",
			Help: "Connections that reached the open state, by role.",
		}, []string{"role"}),
		aborted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saltyrtc_aborted_total",
			Help: "Handshakes aborted, by role, stage and reason.",
		}, []string{"role", "stage", "reason"}),
		closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saltyrtc_closed_total",
			Help: "Connections closed, by role.",
		}, []string{"role"}),
		responderCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "saltyrtc_responder_count",
			Help: "Current number of responders known to the initiator's path.",
		}),
		dropResponderSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "saltyrtc_drop_responder_sent_total",
			Help: "drop-responder messages sent by the initiator.",
		}),
	}
	reg.MustRegister(
		o.handshakesStarted,
		o.stagesComplete,
		o.opened,
		o.aborted,
		o.closed,
		o.responderCount,
		o.dropResponderSent,
	)
	return o
}

var _ observability.Observer = (*Observer)(nil)

func (o *Observer) HandshakeStarted(role observability.Role) {
	o.handshakesStarted.WithLabelValues(string(role)).Inc()
}

func (o *Observer) HandshakeStageComplete(role observability.Role, stage observability.HandshakeStage) {
	o.stagesComplete.WithLabelValues(string(role), string(stage)).Inc()
}

func (o *Observer) Opened(role observability.Role) {
	o.opened.WithLabelValues(string(role)).Inc()
}

func (o *Observer) Aborted(role observability.Role, stage observability.HandshakeStage, reason observability.AbortReason) {
	o.aborted.WithLabelValues(string(role), string(stage), string(reason)).Inc()
}

func (o *Observer) Closed(role observability.Role) {
	o.closed.WithLabelValues(string(role)).Inc()
}

func (o *Observer) ResponderCount(n int) {
	o.responderCount.Set(float64(n))
}

func (o *Observer) DropResponderSent() {
	o.dropResponderSent.Inc()
}
