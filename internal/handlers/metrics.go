package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	subscriptionsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bettrack_push_subscriptions_registered_total",
		Help: "Push subscriptions registered or refreshed.",
	})
	pushSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bettrack_push_sent_total",
		Help: "Push notifications accepted by the push service.",
	})
	pushFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bettrack_push_failed_total",
		Help: "Push notifications rejected or undeliverable.",
	})
)

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
