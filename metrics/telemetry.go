// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics is the meter registry of the node. Meters are no-ops until
// InitializePrometheusMetrics is called, so packages declare them freely.
package metrics

import (
	"net/http"
	"sync"
	"time"
)

var metrics = defaultNoopMetrics()

// Metrics is a meter backend.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter
	GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter
	GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	GetOrCreateHandler() http.Handler
}

type (
	// HistogramMeter aggregates observations into buckets.
	HistogramMeter interface{ Observe(int64) }
	// HistogramVecMeter is a histogram partitioned by labels.
	HistogramVecMeter interface {
		ObserveWithLabels(int64, map[string]string)
	}
	// CountMeter only goes up, until restart.
	CountMeter interface{ Add(int64) }
	// CountVecMeter is a counter partitioned by labels.
	CountVecMeter interface {
		AddWithLabel(int64, map[string]string)
	}
	// GaugeMeter holds a value that goes up and down.
	GaugeMeter interface {
		Add(int64)
		Set(int64)
	}
	// GaugeVecMeter is a gauge partitioned by labels.
	GaugeVecMeter interface {
		SetWithLabel(int64, map[string]string)
	}
)

// Standard buckets for histograms, in milliseconds.
var (
	BucketCallDuration = []int64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1000}
	BucketHTTPReqs     = []int64{
		0, 1, 2, 5, 10, 20, 30, 50, 75, 100,
		150, 200, 300, 400, 500, 750, 1000,
		1500, 2000, 3000, 4000, 5000, 10000,
	}
)

// HTTPHandler serves the metrics of the active backend.
func HTTPHandler() http.Handler { return metrics.GetOrCreateHandler() }

func Histogram(name string, buckets []int64) HistogramMeter {
	return metrics.GetOrCreateHistogramMeter(name, buckets)
}

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return metrics.GetOrCreateHistogramVecMeter(name, labels, buckets)
}

func Counter(name string) CountMeter { return metrics.GetOrCreateCountMeter(name) }

func CounterVec(name string, labels []string) CountVecMeter {
	return metrics.GetOrCreateCountVecMeter(name, labels)
}

func Gauge(name string) GaugeMeter { return metrics.GetOrCreateGaugeMeter(name) }

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return metrics.GetOrCreateGaugeVecMeter(name, labels)
}

// SinceMs returns the milliseconds elapsed since start, the unit all duration histograms use.
func SinceMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

// LazyLoad defers creating a meter to its first use, after the backend has been chosen.
func LazyLoad[T any](f func() T) func() T {
	return sync.OnceValue(f)
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return LazyLoad(func() HistogramMeter { return Histogram(name, buckets) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return LazyLoad(func() HistogramVecMeter { return HistogramVec(name, labels, buckets) })
}

func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter { return Gauge(name) })
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return LazyLoad(func() GaugeVecMeter { return GaugeVec(name, labels) })
}

// NoOp reports whether metrics collection is disabled.
func NoOp() bool {
	_, ok := metrics.(*noopMetrics)
	return ok
}
