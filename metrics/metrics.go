// Package metrics exposes Prometheus instrumentation for the playback
// pipeline. Counters are registered per output name so multiple outputs in
// one process stay distinguishable.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	framesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vsview_playback_frames_delivered_total",
		Help: "Total number of frames handed to the display loop",
	}, []string{"output"})
	ticksSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vsview_playback_ticks_skipped_total",
		Help: "Total number of display ticks skipped because the due frame was not ready",
	}, []string{"output"})
	bufferStalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vsview_playback_buffer_stalls_total",
		Help: "Total number of seek stalls reported while waiting for the first frame",
	}, []string{"output"})
	pluginFrameErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vsview_playback_plugin_frame_errors_total",
		Help: "Total number of plugin frame renders that failed and were dropped",
	}, []string{"output"})
	bufferDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vsview_playback_buffer_depth",
		Help: "Current number of in-flight prefetched frame bundles",
	}, []string{"output"})
)

// Playback bundles the per-output playback metrics. A nil *Playback is
// valid and records nothing, so instrumentation stays optional.
type Playback struct {
	framesDelivered   prometheus.Counter
	ticksSkipped      prometheus.Counter
	bufferStalls      prometheus.Counter
	pluginFrameErrors prometheus.Counter
	bufferDepth       prometheus.Gauge
}

// NewPlayback registers (or reuses) the metric series for one output name.
func NewPlayback(output string) *Playback {
	p := &Playback{
		framesDelivered:   framesDelivered.WithLabelValues(output),
		ticksSkipped:      ticksSkipped.WithLabelValues(output),
		bufferStalls:      bufferStalls.WithLabelValues(output),
		pluginFrameErrors: pluginFrameErrors.WithLabelValues(output),
		bufferDepth:       bufferDepth.WithLabelValues(output),
	}
	p.framesDelivered.Add(0)
	p.ticksSkipped.Add(0)
	p.bufferStalls.Add(0)
	p.pluginFrameErrors.Add(0)
	return p
}

// FrameDelivered counts one frame handed to the display loop.
func (p *Playback) FrameDelivered() {
	if p != nil {
		p.framesDelivered.Inc()
	}
}

// TickSkipped counts one display tick skipped on backpressure.
func (p *Playback) TickSkipped() {
	if p != nil {
		p.ticksSkipped.Inc()
	}
}

// Stall counts one seek stall diagnostic.
func (p *Playback) Stall() {
	if p != nil {
		p.bufferStalls.Inc()
	}
}

// PluginFrameError counts one dropped plugin frame.
func (p *Playback) PluginFrameError() {
	if p != nil {
		p.pluginFrameErrors.Inc()
	}
}

// SetDepth records the current prefetch queue depth.
func (p *Playback) SetDepth(n int) {
	if p != nil {
		p.bufferDepth.Set(float64(n))
	}
}

// Handler returns the Prometheus scrape handler, usually mounted at
// /metrics by the embedding application.
func Handler() http.Handler {
	return promhttp.Handler()
}
