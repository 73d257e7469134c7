package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_actions_total",
			Help: "Total successful catalog mutations",
		},
		[]string{"action"}, // create|edit|delete
	)
	UploadsRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "media_uploads_rejected_total",
			Help: "Total uploads rejected by media intake",
		},
	)
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(EventActionsTotal)
	prometheus.MustRegister(UploadsRejectedTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}
