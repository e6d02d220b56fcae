package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "request_bot"

// Metrics tracks the relay's traffic.
//
//	m := metrics.New(prometheus.NewRegistry())
//	m.RequestReceived()
//	m.TransportError("forward", "forbidden")
type Metrics struct {
	// RequestsReceived counts messages that passed the request detector.
	RequestsReceived prometheus.Counter

	// AdminForwards counts admin notices by outcome.
	// Labels: status (sent|failed)
	AdminForwards *prometheus.CounterVec

	// Decisions counts applied button presses.
	// Labels: action (done|reject), outcome (applied|duplicate|unauthorized|invalid)
	Decisions *prometheus.CounterVec

	// TransportErrors counts failed client calls.
	// Labels: op (ack|forward|notify|edit|reply|answer), kind
	TransportErrors *prometheus.CounterVec

	// Commands counts handled slash commands.
	// Labels: command
	Commands *prometheus.CounterVec

	// DeadlineHours is the current SLA.
	DeadlineHours prometheus.Gauge

	// LedgerRequests is the ledger size by status, refreshed by the janitor.
	// Labels: status
	LedgerRequests *prometheus.GaugeVec
}

// New registers the relay metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_received_total",
			Help:      "Request messages received from users.",
		}),
		AdminForwards: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_forwards_total",
			Help:      "Admin notices by delivery outcome.",
		}, []string{"status"}),
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Admin button presses by action and outcome.",
		}, []string{"action", "outcome"}),
		TransportErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_errors_total",
			Help:      "Failed chat platform calls by operation and failure kind.",
		}, []string{"op", "kind"}),
		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Slash commands handled.",
		}, []string{"command"}),
		DeadlineHours: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deadline_hours",
			Help:      "Current SLA in hours.",
		}),
		LedgerRequests: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_requests",
			Help:      "Requests held in the in-memory ledger by status.",
		}, []string{"status"}),
	}
}

func (m *Metrics) RequestReceived() {
	m.RequestsReceived.Inc()
}

func (m *Metrics) AdminForward(status string) {
	m.AdminForwards.WithLabelValues(status).Inc()
}

func (m *Metrics) Decision(action, outcome string) {
	m.Decisions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) TransportError(op, kind string) {
	m.TransportErrors.WithLabelValues(op, kind).Inc()
}

func (m *Metrics) Command(name string) {
	m.Commands.WithLabelValues(name).Inc()
}

func (m *Metrics) SetDeadlineHours(hours int) {
	m.DeadlineHours.Set(float64(hours))
}

func (m *Metrics) SetLedgerCount(status string, n int) {
	m.LedgerRequests.WithLabelValues(status).Set(float64(n))
}
