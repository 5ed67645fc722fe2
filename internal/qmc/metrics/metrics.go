// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics provides opt-in, low-overhead Prometheus instrumentation
// of the QMC coordinator. Every method is safe to call on a nil *Recorder:
// an unconfigured recorder is a no-op, so hot-path call sites never need a
// conditional.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private Prometheus registry so that multiple coordinators
// (e.g. one per test) never collide on global metric registration.
type Recorder struct {
	registry *prometheus.Registry

	measurementsTotal  prometheus.Counter
	samplesAccumulated prometheus.Counter
	rendezvousWait     prometheus.Histogram
	idleAccumulators   prometheus.Gauge
}

// New builds a Recorder with its own registry. Pass the result (or a nil
// *Recorder) to coordinator.Config.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		measurementsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dcaqmc_measurements_total",
			Help: "Total measurements folded into accumulators.",
		}),
		samplesAccumulated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dcaqmc_samples_accumulated_total",
			Help: "Total walker samples handed off to an accumulator.",
		}),
		rendezvousWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dcaqmc_rendezvous_wait_seconds",
			Help:    "Time a walker spent waiting for a free accumulator slot.",
			Buckets: prometheus.DefBuckets,
		}),
		idleAccumulators: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dcaqmc_idle_accumulators",
			Help: "Accumulators currently idle on the free-slot stack.",
		}),
	}
	reg.MustRegister(r.measurementsTotal, r.samplesAccumulated, r.rendezvousWait, r.idleAccumulators)
	return r
}

// ServeHTTP starts a dedicated /metrics endpoint on addr, mirroring the
// teacher's churn.startMetricsEndpoint. Returns immediately; errors from the
// server are not observable by the caller, an intentionally best-effort
// best-effort posture for an optional diagnostics endpoint.
func (r *Recorder) ServeHTTP(addr string) {
	if r == nil {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = server.ListenAndServe()
	}()
}

func (r *Recorder) ObserveRendezvousWait(d time.Duration) {
	if r == nil {
		return
	}
	r.rendezvousWait.Observe(d.Seconds())
}

func (r *Recorder) IncSamplesAccumulated() {
	if r == nil {
		return
	}
	r.samplesAccumulated.Inc()
}

func (r *Recorder) IncMeasurements() {
	if r == nil {
		return
	}
	r.measurementsTotal.Inc()
}

func (r *Recorder) SetIdleAccumulators(n int) {
	if r == nil {
		return
	}
	r.idleAccumulators.Set(float64(n))
}
