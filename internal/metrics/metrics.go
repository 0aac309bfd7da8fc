// Package metrics holds the Prometheus collectors of the service.
// Collectors are usable before MustRegister, which only binds the service
// label and exposes them on the default registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReadingsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thermotrack_readings_ingested_total",
			Help: "Total number of sensor readings processed, by transport and result.",
		},
		[]string{"source", "result"},
	)

	AlertsRaisedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thermotrack_alerts_raised_total",
			Help: "Total number of alerts raised by threshold evaluation.",
		},
		[]string{"severity"},
	)

	NotificationsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thermotrack_notifications_created_total",
			Help: "Total number of user notifications created.",
		},
		[]string{"origin"},
	)

	RequestTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thermotrack_request_transitions_total",
			Help: "Total number of room condition request status changes.",
		},
		[]string{"status"},
	)

	LatestCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thermotrack_latest_cache_total",
			Help: "Latest-reading cache lookups by result.",
		},
		[]string{"result"},
	)

	DevicesMarkedInactiveTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "thermotrack_devices_marked_inactive_total",
			Help: "Total number of devices flipped to inactive by the liveness worker.",
		},
	)
)

// MustRegister exposes every collector under the service's constant label
func MustRegister(serviceName string) {
	registerer := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, prometheus.DefaultRegisterer)
	registerer.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		ReadingsIngestedTotal,
		AlertsRaisedTotal,
		NotificationsCreatedTotal,
		RequestTransitionsTotal,
		LatestCacheTotal,
		DevicesMarkedInactiveTotal,
	)
}
