package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ServicesProcessedTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconfigurer_services_processed_total",
		Help: "Total number of services whose manifest was patched (applied or previewed).",
	},
	[]string{"service", "mode"},
)

var ServicesSkippedTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconfigurer_services_skipped_total",
		Help: "Total number of services skipped during a run (missing or malformed manifest, unknown container).",
	},
	[]string{"service"},
)

var ApplyRejectedTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconfigurer_apply_rejected_total",
		Help: "Total number of patched manifests the platform refused.",
	},
	[]string{"service"},
)

var BackupsCreatedTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconfigurer_backups_created_total",
		Help: "Total number of pre-mutation snapshots written.",
	},
	[]string{"service"},
)

var RollbacksTotal = promauto.With(prometheus.DefaultRegisterer).NewCounter(
	prometheus.CounterOpts{
		Name: "reconfigurer_rollbacks_total",
		Help: "Total number of rollback invocations that reached the platform.",
	},
)
