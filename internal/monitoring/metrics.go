package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "booking_sessions_active",
			Help: "Booking sessions currently held in memory",
		},
	)

	bookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Booking flow operations by outcome",
		},
		[]string{"operation", "status"},
	)

	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Ticket PDFs produced per event",
		},
		[]string{"event_id"},
	)

	ticketRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticket_render_duration_seconds",
			Help:    "Time spent rendering a ticket PDF, image download included",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
		},
	)

	apiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "show_api_requests_total",
			Help: "Calls to the show REST API by operation and outcome",
		},
		[]string{"operation", "status"},
	)
)

// Monitor is the recording side of the metrics; a nil *Monitor records nothing.
type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) SessionOpened() {
	if m == nil {
		return
	}
	bookingSessions.Inc()
}

func (m *Monitor) SessionsClosed(n int) {
	if m == nil || n == 0 {
		return
	}
	bookingSessions.Sub(float64(n))
}

func (m *Monitor) TrackOperation(operation string, err error) {
	if m == nil {
		return
	}
	bookingOperations.WithLabelValues(operation, outcome(err)).Inc()
}

func (m *Monitor) TrackTicket(eventID string, duration time.Duration) {
	if m == nil {
		return
	}
	ticketsIssued.WithLabelValues(eventID).Inc()
	ticketRenderDuration.Observe(duration.Seconds())
}

func (m *Monitor) TrackAPICall(operation string, err error) {
	if m == nil {
		return
	}
	apiRequests.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
