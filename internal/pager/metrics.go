package pager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topics_pager_dispatch_total",
			Help: "Page requests dispatched by trigger",
		},
		[]string{"trigger"},
	)

	ignoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topics_pager_ignored_total",
			Help: "Triggers dropped without dispatch, by trigger and reason",
		},
		[]string{"trigger", "reason"},
	)

	failuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topics_pager_failures_total",
			Help: "Failed page requests by error kind",
		},
		[]string{"kind"},
	)
)

// Reasons a trigger is dropped
const (
	reasonInFlight = "in_flight"
	reasonNoMore   = "no_more"
	reasonClosed   = "closed"
)
