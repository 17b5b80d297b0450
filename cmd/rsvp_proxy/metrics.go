//nolint:gochecknoglobals
package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var forwardsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rsvp",
	Subsystem: "proxy",
	Name:      "forwards_total",
	Help:      "The total number of forwarded posts by upstream status",
}, []string{"code"})
