// Copyright IBM Corp. All Rights Reserved.
//
// SPDX-License-Identifier: Apache-2.0
//

package api

import "sort"

// A Counter represents a monotonically increasing value.
type Counter interface {
	// With is used to provide label values when updating a Counter. This must be
	// used to provide values for all LabelNames provided to CounterOpts.
	With(labelValues ...string) Counter

	// Add increments a counter value.
	Add(delta float64)
}

// CounterOpts provides the information and labels for a counter metric.
type CounterOpts struct {
	Namespace    string
	Subsystem    string
	Name         string
	Help         string
	LabelNames   []string
	LabelHelp    map[string]string
	StatsdFormat string
}

// A Gauge is a meter that expresses the current value of some metric.
type Gauge interface {
	// With is used to provide label values when recording a Gauge value. This
	// must be used to provide values for all LabelNames provided to GaugeOpts.
	With(labelValues ...string) Gauge

	// Add increments a Gauge value.
	Add(delta float64)

	// Set is used to update the current value associated with a Gauge.
	Set(value float64)
}

// GaugeOpts provides the information and labels for a gauge metric.
type GaugeOpts struct {
	Namespace    string
	Subsystem    string
	Name         string
	Help         string
	LabelNames   []string
	LabelHelp    map[string]string
	StatsdFormat string
}

// A Histogram is a meter that records an observed value into quantized
// buckets.
type Histogram interface {
	// With is used to provide label values when recording a Histogram
	// observation. This must be used to provide values for all LabelNames
	// provided to HistogramOpts.
	With(labelValues ...string) Histogram
	Observe(value float64)
}

// HistogramOpts provides the information and labels for a histogram metric.
type HistogramOpts struct {
	Namespace    string
	Subsystem    string
	Name         string
	Help         string
	Buckets      []float64
	LabelNames   []string
	LabelHelp    map[string]string
	StatsdFormat string
}

// Provider abstracts the creation of metrics, so that different metric
// backends (or none at all) may be plugged in.
type Provider interface {
	// NewCounter creates a new instance of a Counter.
	NewCounter(CounterOpts) Counter
	// NewGauge creates a new instance of a Gauge.
	NewGauge(GaugeOpts) Gauge
	// NewHistogram creates a new instance of a Histogram.
	NewHistogram(HistogramOpts) Histogram
}

// CustomerProvider wraps a Provider and attaches a fixed set of label
// name/value pairs to every metric it creates.
type CustomerProvider struct {
	Provider
	Labels map[string]string
}

// NewCustomerProvider creates a CustomerProvider from pairs of label names
// and values.
func NewCustomerProvider(p Provider, labelValues ...string) *CustomerProvider {
	labels := make(map[string]string)
	for i := 0; i+1 < len(labelValues); i += 2 {
		labels[labelValues[i]] = labelValues[i+1]
	}
	return &CustomerProvider{Provider: p, Labels: labels}
}

// MakeLabelNames returns the given label names extended with the provider's
// own label names, the latter in sorted order.
func (cp *CustomerProvider) MakeLabelNames(names ...string) []string {
	out := make([]string, 0, len(names)+len(cp.Labels))
	out = append(out, names...)
	return append(out, cp.sortedLabelNames()...)
}

// MakeStatsdFormat extends a statsd format string with the provider's label
// names, in sorted order.
func (cp *CustomerProvider) MakeStatsdFormat(format string) string {
	for _, name := range cp.sortedLabelNames() {
		format += ".%{" + name + "}"
	}
	return format
}

// LabelsForWith returns the given label value pairs extended with the
// provider's own pairs, ready to be passed to With.
func (cp *CustomerProvider) LabelsForWith(labelValues ...string) []string {
	out := make([]string, 0, len(labelValues)+2*len(cp.Labels))
	out = append(out, labelValues...)
	for _, name := range cp.sortedLabelNames() {
		out = append(out, name, cp.Labels[name])
	}
	return out
}

// NewCounter creates a Counter carrying the provider's labels.
func (cp *CustomerProvider) NewCounter(o CounterOpts) Counter {
	return cp.Provider.NewCounter(NewCounterOpts(o, cp.sortedLabelNames())).With(cp.LabelsForWith()...)
}

// NewGauge creates a Gauge carrying the provider's labels.
func (cp *CustomerProvider) NewGauge(o GaugeOpts) Gauge {
	return cp.Provider.NewGauge(NewGaugeOpts(o, cp.sortedLabelNames())).With(cp.LabelsForWith()...)
}

// NewHistogram creates a Histogram carrying the provider's labels.
func (cp *CustomerProvider) NewHistogram(o HistogramOpts) Histogram {
	return cp.Provider.NewHistogram(NewHistogramOpts(o, cp.sortedLabelNames())).With(cp.LabelsForWith()...)
}

func (cp *CustomerProvider) sortedLabelNames() []string {
	names := make([]string, 0, len(cp.Labels))
	for name := range cp.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewCounterOpts returns a copy of o with the extra label names appended in
// sorted order, and the statsd format extended accordingly.
func NewCounterOpts(o CounterOpts, labelNames []string) CounterOpts {
	o.LabelNames, o.StatsdFormat = makeLabels(o.LabelNames, o.StatsdFormat, labelNames)
	return o
}

// NewGaugeOpts returns a copy of o with the extra label names appended in
// sorted order, and the statsd format extended accordingly.
func NewGaugeOpts(o GaugeOpts, labelNames []string) GaugeOpts {
	o.LabelNames, o.StatsdFormat = makeLabels(o.LabelNames, o.StatsdFormat, labelNames)
	return o
}

// NewHistogramOpts returns a copy of o with the extra label names appended in
// sorted order, and the statsd format extended accordingly.
func NewHistogramOpts(o HistogramOpts, labelNames []string) HistogramOpts {
	o.LabelNames, o.StatsdFormat = makeLabels(o.LabelNames, o.StatsdFormat, labelNames)
	return o
}

func makeLabels(existing []string, format string, added []string) ([]string, string) {
	names := make([]string, len(added))
	copy(names, added)
	sort.Strings(names)

	out := make([]string, 0, len(existing)+len(names))
	out = append(out, existing...)
	out = append(out, names...)
	for _, name := range names {
		format += ".%{" + name + "}"
	}
	return out, format
}
