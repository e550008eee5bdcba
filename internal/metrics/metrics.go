package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Technical metrics
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	ResponseTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_time_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: []float64{0.1, 0.5, 1, 2, 5},
	}, []string{"method", "path"})

	// Business metrics
	LotsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parking_lots_created_total",
		Help: "Total number of parking lots created",
	})

	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_created_total",
		Help: "Total number of spot reservations opened",
	})

	ReservationsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_released_total",
		Help: "Total number of spot reservations released",
	})

	ReservationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_rejected_total",
		Help: "Total number of rejected reserve attempts",
	}, []string{"reason"})
)
