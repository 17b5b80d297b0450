//nolint:gochecknoglobals
package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess  = "success"
	resultInvalid  = "invalid"
	resultConfig   = "config"
	resultUpstream = "upstream"
)

var (
	submissionsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rsvp",
		Name:      "submissions_total",
		Help:      "The total number of submissions by result",
	}, []string{"result"})

	rowsMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rsvp",
		Name:      "rows_appended_total",
		Help:      "The total number of rows appended to the sheet",
	})
)
