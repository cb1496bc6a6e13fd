package vsview

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/buffer"
	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/cache"
	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/config"
	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/frame"
	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/metrics"
	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/packing"
)

// Options configures a VideoOutput beyond its main source.
type Options struct {
	// Alpha is an optional separate alpha node rendered alongside the
	// main node.
	Alpha frame.Source
	// Converter is the engine colorspace-conversion hook; nil is fine
	// when the source already yields canonical planar RGB.
	Converter packing.Converter
	// Settings defaults to config.Default() when zero.
	Settings config.Settings
	// Metrics may be nil.
	Metrics *metrics.Playback
	// FPSNum and FPSDen give the clip's frame rate; both zero means
	// variable frame rate.
	FPSNum int
	FPSDen int
	// FrameDurations, if set, gives per-frame durations in seconds for
	// variable-frame-rate clips.
	FrameDurations []float64
}

// VideoOutput composes a frame source, a pixel packer and an optional
// LRU-backed frame cache into a single prepared node, and tracks per-frame
// properties observed at render time.
type VideoOutput struct {
	source   frame.Source
	alpha    frame.Source
	conv     packing.Converter
	settings config.Settings
	stats    *metrics.Playback
	log      *logrus.Entry

	packer     packing.Packer
	prepared   frame.Source
	frameCache *cache.CachingSource

	propsMu sync.Mutex
	props   *cache.LRU[int, map[string]any]

	fpsNum, fpsDen int
	cumDurations   []float64
}

// NewVideoOutput builds and prepares an output over src.
func NewVideoOutput(src frame.Source, opts Options) (*VideoOutput, error) {
	settings := opts.Settings
	if settings == (config.Settings{}) {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	o := &VideoOutput{
		source:   src,
		alpha:    opts.Alpha,
		conv:     opts.Converter,
		settings: settings,
		stats:    opts.Metrics,
		log:      logrus.WithField("component", "videooutput"),
		props:    cache.NewLRU[int, map[string]any](settings.Playback.BufferSize*2, nil),
		fpsNum:   opts.FPSNum,
		fpsDen:   opts.FPSDen,
	}

	if len(opts.FrameDurations) > 0 {
		o.cumDurations = make([]float64, len(opts.FrameDurations))
		total := 0.0
		for i, d := range opts.FrameDurations {
			total += d
			o.cumDurations[i] = total
		}
	}

	if err := o.prepare(); err != nil {
		return nil, err
	}
	return o, nil
}

// prepare resolves the packer, falling back to the vectorized 8-bit packer
// when the selected backend cannot composite the clip's alpha, and stacks
// the packed node with the optional frame cache.
func (o *VideoOutput) prepare() error {
	packer, err := packing.NewPacker(packing.Method(o.settings.View.PackingMethod), o.settings.View.BitDepth)
	if err != nil {
		return fmt.Errorf("resolve packer: %w", err)
	}

	if o.alpha != nil && !packer.SupportsAlpha() {
		o.log.WithField("packer", packer.Name()).Warn(
			"Packer can't pack clip with alpha plane, falling back to vectorized 8-bit")
		packer, err = packing.NewPacker(packing.MethodVectorized, 8)
		if err != nil {
			return fmt.Errorf("resolve fallback packer: %w", err)
		}
	}
	o.packer = packer

	cfg := packing.ConvertConfig{
		DitherType:   o.settings.View.DitherType,
		ChromaFilter: o.settings.View.ChromaResizer.Filter,
		FilterParamA: o.settings.View.ChromaResizer.ParamA,
		FilterParamB: o.settings.View.ChromaResizer.ParamB,
	}

	o.prepared = packing.NewPackedSource(o.source, o.alpha, packer, o.conv, cfg, o.recordProps)

	if size := o.settings.Playback.CacheSize; size > 0 {
		o.frameCache = cache.NewCachingSource(o.prepared, size)
		o.prepared = o.frameCache
	}
	return nil
}

func (o *VideoOutput) recordProps(n int, props map[string]any) {
	o.propsMu.Lock()
	o.props.Set(n, props)
	o.propsMu.Unlock()
}

// Prepared returns the node the display loop should consume: packed and,
// when configured, cached.
func (o *VideoOutput) Prepared() frame.Source { return o.prepared }

// Packer returns the resolved packing backend.
func (o *VideoOutput) Packer() packing.Packer { return o.packer }

// NewBuffer creates a fresh prefetch buffer over the prepared node. A
// buffer is single-use: once invalidated it stays dead, and the next
// playback or seek gets a new one from here.
func (o *VideoOutput) NewBuffer() *buffer.FrameBuffer {
	return buffer.NewFrameBuffer(o.prepared, o.settings.Playback.BufferSize, o.stats)
}

// Props returns the properties observed for frame n at render time, if
// they are still cached.
func (o *VideoOutput) Props(n int) (map[string]any, bool) {
	o.propsMu.Lock()
	defer o.propsMu.Unlock()
	return o.props.Get(n)
}

// PixelBuffer exposes a packed frame's memory as a zero-copy display
// buffer.
func (o *VideoOutput) PixelBuffer(f *frame.Frame) (*packing.PixelBuffer, error) {
	return packing.FrameToPixelBuffer(f, o.packer.BitDepth())
}

// Clear drops cached frames and recorded properties.
func (o *VideoOutput) Clear() {
	o.propsMu.Lock()
	o.props.Clear()
	o.propsMu.Unlock()
	if o.frameCache != nil {
		o.frameCache.Clear()
	}
}

// FrameToTime converts a frame index to a timestamp in seconds, using the
// per-frame duration table for variable-frame-rate clips.
func (o *VideoOutput) FrameToTime(n int) float64 {
	if o.fpsNum <= 0 || o.fpsDen <= 0 {
		if len(o.cumDurations) == 0 || n <= 0 {
			return 0
		}
		if n > len(o.cumDurations) {
			n = len(o.cumDurations)
		}
		return o.cumDurations[n-1]
	}
	return float64(n) * float64(o.fpsDen) / float64(o.fpsNum)
}

// TimeToFrame converts a timestamp in seconds to a frame index, rounding
// half away from zero for fixed-rate clips.
func (o *VideoOutput) TimeToFrame(seconds float64) int {
	if o.fpsNum <= 0 || o.fpsDen <= 0 {
		if len(o.cumDurations) == 0 {
			return 0
		}
		return sort.SearchFloat64s(o.cumDurations, seconds+1e-9)
	}
	return int(math.Floor(seconds*float64(o.fpsNum)/float64(o.fpsDen) + 0.5))
}
