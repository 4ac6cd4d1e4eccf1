// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes prometheus collectors for the transfer, parse,
// catalog, and orchestration stages. Unlike a typical prometheus consumer,
// this module has no scrape HTTP endpoint to attach to (the HTTP/UI server
// is out of scope per spec.md §1); the Registry is instead snapshotted
// on demand by the `health` CLI command.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registry bundles the module's collectors. No component of the sync
// pipeline updates them, so a freshly built Registry reports zeros.
type Registry struct {
	reg *prometheus.Registry

	FilesTransferred prometheus.Counter
	BytesTransferred prometheus.Counter
	TransferFailures *prometheus.CounterVec // labeled by classification: error/cancelled/timeout

	RecordsParsed  prometheus.Counter
	ParseFailures  prometheus.Counter

	BooksInCatalog    prometheus.Gauge
	AuthorsInCatalog  prometheus.Gauge
	SubjectsInCatalog prometheus.Gauge

	PhaseDuration *prometheus.HistogramVec // labeled by phase: metadata/content
	RetriesTotal  prometheus.Counter
}

// New builds a Registry with every collector registered, ready to update.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		FilesTransferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gutenbergsync", Subsystem: "transfer", Name: "files_transferred_total",
			Help: "Total files transferred by the rsync driver.",
		}),
		BytesTransferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gutenbergsync", Subsystem: "transfer", Name: "bytes_transferred_total",
			Help: "Total bytes transferred by the rsync driver.",
		}),
		TransferFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gutenbergsync", Subsystem: "transfer", Name: "failures_total",
			Help: "Transfer terminations by classification.",
		}, []string{"classification"}),
		RecordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gutenbergsync", Subsystem: "parse", Name: "records_total",
			Help: "RDF records successfully parsed.",
		}),
		ParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gutenbergsync", Subsystem: "parse", Name: "failures_total",
			Help: "RDF files skipped due to parse failure.",
		}),
		BooksInCatalog: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gutenbergsync", Subsystem: "catalog", Name: "books",
			Help: "Current count of ebooks in the catalog.",
		}),
		AuthorsInCatalog: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gutenbergsync", Subsystem: "catalog", Name: "authors",
			Help: "Current count of distinct authors in the catalog.",
		}),
		SubjectsInCatalog: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gutenbergsync", Subsystem: "catalog", Name: "subjects",
			Help: "Current count of distinct subjects in the catalog.",
		}),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gutenbergsync", Subsystem: "orchestrator", Name: "phase_duration_seconds",
			Help:    "Duration of each orchestrator phase.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"phase"}),
		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gutenbergsync", Subsystem: "orchestrator", Name: "retries_total",
			Help: "Total automatic retry attempts across sync invocations.",
		}),
	}

	reg.MustRegister(
		r.FilesTransferred, r.BytesTransferred, r.TransferFailures,
		r.RecordsParsed, r.ParseFailures,
		r.BooksInCatalog, r.AuthorsInCatalog, r.SubjectsInCatalog,
		r.PhaseDuration, r.RetriesTotal,
	)
	return r
}

// Gather returns every metric family currently registered, for the
// `health` command to render as a plain-text snapshot.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.reg.Gather()
}
