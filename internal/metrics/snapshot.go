// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"fmt"
	"sort"
	"strings"

	dto "github.com/prometheus/client_model/go"
)

// Snapshot renders every registered metric family as plain text lines,
// sorted by name, for the `health` CLI command -- a minimal stand-in for
// the Prometheus text exposition format without running an HTTP server.
func (r *Registry) Snapshot() (string, error) {
	families, err := r.Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}

	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})

	var b strings.Builder
	for _, f := range families {
		for _, m := range f.Metric {
			fmt.Fprintf(&b, "%s%s %s\n", f.GetName(), formatLabels(m.GetLabel()), formatValue(f.GetType().String(), m))
		}
	}
	return b.String(), nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s=%q", l.GetName(), l.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatValue(metricType string, m *dto.Metric) string {
	switch {
	case m.Counter != nil:
		return fmt.Sprintf("%g", m.Counter.GetValue())
	case m.Gauge != nil:
		return fmt.Sprintf("%g", m.Gauge.GetValue())
	case m.Histogram != nil:
		return fmt.Sprintf("count=%d sum=%g", m.Histogram.GetSampleCount(), m.Histogram.GetSampleSum())
	default:
		return metricType
	}
}
