package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission metrics - Track contract invocations
var (
	InvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quorumkit_invocations_total",
			Help: "Total number of successful contract invocations by path and kind",
		},
		[]string{"path", "kind"},
	)

	FallbackInvocations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorumkit_fallback_invocations_total",
		Help: "Total number of invocations that fell back to raw ABI encoding",
	})

	InvocationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorumkit_invocation_failures_total",
		Help: "Total number of invocations that failed on both paths",
	})

	TransactionsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorumkit_transactions_submitted_total",
		Help: "Total number of transactions submitted via eth_sendTransaction",
	})
)

// Confirmation metrics - Track receipt polling
var (
	ReceiptPolls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorumkit_receipt_polls_total",
		Help: "Total number of eth_getTransactionReceipt queries",
	})

	ConfirmationTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorumkit_confirmation_timeouts_total",
		Help: "Total number of transactions that were not included within the poll budget",
	})

	ConfirmationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quorumkit_confirmation_duration_seconds",
		Help:    "Time from the first receipt query until inclusion was observed",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	DeploymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quorumkit_deployments_total",
			Help: "Total number of contract deployments by result",
		},
		[]string{"result"},
	)
)

// API metrics - Track the loan backend
var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quorumkit_api_requests_total",
			Help: "Total number of API requests by route and status code",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quorumkit_api_request_duration_seconds",
			Help:    "Time taken to serve API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Error metrics - Track failures
var (
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quorumkit_errors_total",
			Help: "Total number of errors by component",
		},
		[]string{"component"},
	)
)
