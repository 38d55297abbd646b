// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package metrics exports the telemetry data and events of go-unnest as Prometheus
// metrics.
package metrics

import (
	"context"
	"net/http"

	unnest "github.com/hashicorp/go-unnest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// namespace prefixes all metric names
const namespace = "unnest"

// Collector records expansions and fallback events. Use [Collector.TelemetryHook] and
// [Collector.EventHook] as hooks of an [unnest.Config].
type Collector struct {
	gatherer prometheus.Gatherer

	expansionsTotal   *prometheus.CounterVec
	expansionDuration prometheus.Histogram
	expansionBytes    prometheus.Histogram
	inputBytes        prometheus.Histogram
	archivesTotal     prometheus.Counter
	filesTotal        prometheus.Counter
	degradedTotal     prometheus.Counter
	maxDepth          prometheus.Histogram
	eventsTotal       *prometheus.CounterVec
}

// NewCollector registers all metrics at reg. If reg is nil, a new registry is used.
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Collector{
		gatherer: reg,
		expansionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expansions_total",
				Help:      "Total number of expansions",
			},
			[]string{"input_type", "status"},
		),
		expansionDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "expansion_duration_seconds",
				Help:      "Expansion duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		expansionBytes: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "expansion_size_bytes",
				Help:      "Decompressed bytes per expansion",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),
		inputBytes: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "input_size_bytes",
				Help:      "Size of expanded inputs",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),
		archivesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archives_expanded_total",
				Help:      "Total number of expanded archives, including inputs",
			},
		),
		filesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_expanded_total",
				Help:      "Total number of leaf files",
			},
		),
		degradedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archives_degraded_total",
				Help:      "Total number of nested archives kept as file",
			},
		),
		maxDepth: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "nesting_depth",
				Help:      "Deepest nesting level per expansion",
				Buckets:   prometheus.LinearBuckets(0, 1, 8),
			},
		),
		eventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of fallback events",
			},
			[]string{"type"},
		),
	}
}

// Handler returns the HTTP handler that exposes the metrics of c.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// TelemetryHook records the telemetry data of a finished expansion.
func (c *Collector) TelemetryHook(ctx context.Context, td *unnest.TelemetryData) {
	// every degraded archive counts as error, anything beyond failed the expansion
	status := "success"
	if td.ExpansionErrors > td.DegradedArchives {
		status = "failure"
	}
	c.expansionsTotal.WithLabelValues(td.InputType, status).Inc()
	c.expansionDuration.Observe(td.ExpansionDuration.Seconds())
	c.expansionBytes.Observe(float64(td.ExpansionSize))
	c.inputBytes.Observe(float64(td.InputSize))
	c.archivesTotal.Add(float64(td.ExpandedArchives))
	c.filesTotal.Add(float64(td.ExpandedFiles))
	c.degradedTotal.Add(float64(td.DegradedArchives))
	c.maxDepth.Observe(float64(td.MaxDepth))
}

// EventHook counts fallback events by type.
func (c *Collector) EventHook(ctx context.Context, e unnest.Event) {
	c.eventsTotal.WithLabelValues(string(e.Type)).Inc()
}
