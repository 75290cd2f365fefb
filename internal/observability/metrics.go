// Package observability provides Prometheus metrics for the tip pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TipsApplied counts tips durably applied to the ledger.
	TipsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soltip_tips_applied_total",
		Help: "Total number of tips applied to the ledger",
	})

	// TipsDuplicate counts tip claims that matched an already-applied signature.
	TipsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soltip_tips_duplicate_total",
		Help: "Total number of tip claims resolved idempotently to an existing tip",
	})

	// TipsRejected counts rejected tip claims by reason.
	TipsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soltip_tips_rejected_total",
		Help: "Total number of rejected tip claims by reason",
	}, []string{"reason"})

	// ChainVerifications counts chain verification outcomes by verdict.
	ChainVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soltip_chain_verifications_total",
		Help: "Total number of chain verification attempts by verdict",
	}, []string{"verdict"})

	// ChainRPCLatency records chain RPC round-trip latency by method.
	ChainRPCLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "soltip_chain_rpc_latency_seconds",
		Help:    "Chain RPC round-trip latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soltip_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PostsCreated counts posts accepted into the store.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soltip_posts_created_total",
		Help: "Total number of posts created",
	})
)
