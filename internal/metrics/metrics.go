// Package metrics wires Core's internal state into Prometheus: a
// small Recorder interface the core depends on, with a nil-safe no-op
// default so internal/bridge never requires a metrics server to be
// running.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder is the subset of observability BridgeCore needs to report.
// Both roles call the subset that applies to them; calling an
// inapplicable method (e.g. a Receiver calling SetLinkQuality) is
// harmless, it just never happens in practice.
type Recorder interface {
	SetLinkQuality(q float64)
	SetChannel(ch uint8)
	SetPaired(paired bool)
	IncFramesSent(tag string)
	IncFramesReceived(tag string)
	IncHops()
}

// noop satisfies Recorder without touching Prometheus, used when no
// metrics server is configured.
type noop struct{}

func (noop) SetLinkQuality(float64)   {}
func (noop) SetChannel(uint8)         {}
func (noop) SetPaired(bool)           {}
func (noop) IncFramesSent(string)     {}
func (noop) IncFramesReceived(string) {}
func (noop) IncHops()                 {}

// Noop is the shared no-op Recorder.
var Noop Recorder = noop{}

// Prometheus is a Recorder backed by client_golang collectors,
// registered against reg (pass prometheus.NewRegistry() to keep tests
// isolated, or prometheus.DefaultRegisterer in a CLI binary).
type Prometheus struct {
	linkQuality    prometheus.Gauge
	channel        prometheus.Gauge
	paired         prometheus.Gauge
	framesSent     *prometheus.CounterVec
	framesReceived *prometheus.CounterVec
	hops           prometheus.Counter
}

// NewPrometheus constructs and registers the rcbridge_* collectors.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		linkQuality: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rcbridge_link_quality",
			Help: "Current Sender-side link quality estimate in [0,1].",
		}),
		channel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rcbridge_channel",
			Help: "Current radio channel.",
		}),
		paired: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rcbridge_paired",
			Help: "1 if paired, 0 otherwise.",
		}),
		framesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rcbridge_frames_sent_total",
			Help: "Frames handed to the radio substrate, by frame type.",
		}, []string{"type"}),
		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rcbridge_frames_received_total",
			Help: "Well-formed frames delivered by the radio substrate, by frame type.",
		}, []string{"type"}),
		hops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rcbridge_hops_total",
			Help: "Channel hops committed by the Receiver.",
		}),
	}
	reg.MustRegister(p.linkQuality, p.channel, p.paired, p.framesSent, p.framesReceived, p.hops)
	return p
}

func (p *Prometheus) SetLinkQuality(q float64) { p.linkQuality.Set(q) }
func (p *Prometheus) SetChannel(ch uint8)      { p.channel.Set(float64(ch)) }
func (p *Prometheus) SetPaired(paired bool) {
	if paired {
		p.paired.Set(1)
	} else {
		p.paired.Set(0)
	}
}
func (p *Prometheus) IncFramesSent(tag string)     { p.framesSent.WithLabelValues(tag).Inc() }
func (p *Prometheus) IncFramesReceived(tag string) { p.framesReceived.WithLabelValues(tag).Inc() }
func (p *Prometheus) IncHops()                     { p.hops.Inc() }

var _ Recorder = (*Prometheus)(nil)
