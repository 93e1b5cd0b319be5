package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/chequebook/internal/domain"
)

// Metrics holds the cheque lifecycle metrics. It implements usecase.Metrics.
type Metrics struct {
	// Lifecycle metrics
	ChequesCreated *prometheus.CounterVec
	ChequesSettled *prometheus.CounterVec
	ChequesDeleted *prometheus.CounterVec

	// Reminder metrics
	ChequesDueToday *prometheus.GaugeVec
	ReminderRuns    *prometheus.CounterVec

	// Event metrics
	EventsPublished *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ChequesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chequebook_cheques_created_total",
				Help: "Total number of cheques created",
			},
			[]string{"kind"},
		),
		ChequesSettled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chequebook_cheques_settled_total",
				Help: "Total number of cheques completed or deposited",
			},
			[]string{"kind"},
		),
		ChequesDeleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chequebook_cheques_deleted_total",
				Help: "Total number of cheques deleted",
			},
			[]string{"kind"},
		),

		ChequesDueToday: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chequebook_cheques_due_today",
				Help: "Pending cheques whose due date is today, as of the last reminder run",
			},
			[]string{"kind"},
		),
		ReminderRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chequebook_reminder_runs_total",
				Help: "Total reminder runs by outcome",
			},
			[]string{"outcome"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chequebook_events_published_total",
				Help: "Total lifecycle events handed to the publisher",
			},
			[]string{"type", "outcome"},
		),
	}
}

func (m *Metrics) ChequeCreated(kind domain.Kind) {
	m.ChequesCreated.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ChequeSettled(kind domain.Kind) {
	m.ChequesSettled.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ChequeDeleted(kind domain.Kind) {
	m.ChequesDeleted.WithLabelValues(string(kind)).Inc()
}

// DueToday records the number of cheques of kind due today.
func (m *Metrics) DueToday(kind domain.Kind, n int) {
	m.ChequesDueToday.WithLabelValues(string(kind)).Set(float64(n))
}

// ReminderRun counts a reminder pass; ok is false when it failed.
func (m *Metrics) ReminderRun(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.ReminderRuns.WithLabelValues(outcome).Inc()
}

// EventPublished counts a publish attempt.
func (m *Metrics) EventPublished(eventType string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, outcome).Inc()
}
