// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes process wide meters. Meters are no-ops until
// InitializePrometheusMetrics installs the prometheus provider.
package metrics

import (
	"net/http"
	"sync"
)

// provider builds meters for one backend.
type provider interface {
	counter(name string) CountMeter
	counterVec(name string, labels []string) CountVecMeter
	gauge(name string) GaugeMeter
	gaugeVec(name string, labels []string) GaugeVecMeter
	histogram(name string, buckets []int64) HistogramMeter
	histogramVec(name string, labels []string, buckets []int64) HistogramVecMeter
	handler() http.Handler
}

var current provider = noop{}

// NoOp reports whether metrics collection is disabled.
func NoOp() bool {
	_, ok := current.(noop)
	return ok
}

// HTTPHandler serves the scrape endpoint of the installed provider.
func HTTPHandler() http.Handler { return current.handler() }

// Millisecond buckets.
var (
	Bucket10s      = []int64{0, 500, 1000, 2000, 3000, 4000, 5000, 7500, 10_000}
	BucketHTTPReqs = []int64{0, 1, 2, 5, 10, 20, 30, 50, 75, 100, 150, 200, 300, 400, 500, 750, 1000, 1500, 2000, 3000, 4000, 5000, 10000}
)

// BucketBatchSize is meant for item counts.
var BucketBatchSize = []int64{1, 2, 5, 10, 20, 50, 100}

type (
	CountMeter interface{ Add(int64) }

	CountVecMeter interface {
		AddWithLabel(int64, map[string]string)
	}

	GaugeMeter interface {
		Add(int64)
		Set(int64)
	}

	GaugeVecMeter interface {
		AddWithLabel(int64, map[string]string)
		SetWithLabel(int64, map[string]string)
	}

	HistogramMeter interface{ Observe(int64) }

	HistogramVecMeter interface {
		ObserveWithLabels(int64, map[string]string)
	}
)

func Counter(name string) CountMeter { return current.counter(name) }

func CounterVec(name string, labels []string) CountVecMeter {
	return current.counterVec(name, labels)
}

func Gauge(name string) GaugeMeter { return current.gauge(name) }

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return current.gaugeVec(name, labels)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return current.histogram(name, buckets)
}

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return current.histogramVec(name, labels, buckets)
}

// LazyLoad resolves a meter on first call, so meters can be package vars
// declared before the provider is installed.
func LazyLoad[T any](create func() T) func() T {
	return sync.OnceValue(create)
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

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return LazyLoad(func() HistogramMeter { return Histogram(name, buckets) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return LazyLoad(func() HistogramVecMeter { return HistogramVec(name, labels, buckets) })
}
