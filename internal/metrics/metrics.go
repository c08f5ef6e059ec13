package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

const namespace = "neobank_ledger"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Transfer attempts by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)

	TransferredMinorUnits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transferred_minor_units_total",
			Help:      "Sum of successfully transferred amounts in minor units.",
		},
		[]string{"channel"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveTransfer records one transfer attempt. amount is only counted on
// success.
func ObserveTransfer(channel domain.Channel, amount int64, err error) {
	if channel == "" {
		channel = domain.ChannelPix
	}
	TransfersTotal.WithLabelValues(string(channel), TransferOutcome(err)).Inc()
	if err == nil {
		TransferredMinorUnits.WithLabelValues(string(channel)).Add(float64(amount))
	}
}

func TransferOutcome(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrInvalidRecipient):
		return "invalid_recipient"
	case errors.Is(err, domain.ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrPartialCommit):
		return "partial_commit"
	case errors.Is(err, domain.ErrStoreIO):
		return "store_io_failure"
	default:
		return "error"
	}
}
