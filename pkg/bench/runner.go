package bench

import (
	"fmt"

	"github.com/petrzlen/freqbench-golang/pkg/analysis"
	"github.com/petrzlen/freqbench-golang/pkg/audioio"
	"github.com/petrzlen/freqbench-golang/pkg/models"
	"github.com/petrzlen/freqbench-golang/pkg/signal"
	"github.com/rs/zerolog/log"
)

// DefaultAmplitude keeps the sweep well below full scale so the DUT is not driven into clipping.
const DefaultAmplitude = 0.1

// SweepRequest is one measurement pass. Zero SmoothWindow and Points leave
// the curve unsmoothed and undecimated.
type SweepRequest struct {
	StartFreq    float64 `json:"startFreq"`
	EndFreq      float64 `json:"endFreq"`
	Duration     float64 `json:"duration"`
	SampleRate   int     `json:"sampleRate"`
	InputDevice  int     `json:"inputDevice"`
	OutputDevice int     `json:"outputDevice"`
	SmoothWindow int     `json:"smoothWindow"`
	Points       int     `json:"points"`
	// AlignOffset skips that many captured samples before comparing against the
	// padded stimulus; negative estimates it by cross-correlation.
	AlignOffset int `json:"alignOffset"`
}

func (r SweepRequest) StimulusSpec() models.StimulusSpec {
	return models.StimulusSpec{
		StartFreq:  r.StartFreq,
		EndFreq:    r.EndFreq,
		Duration:   r.Duration,
		SampleRate: r.SampleRate,
	}
}

// Result is a measurement together with the response computed from it.
type Result struct {
	Measurement models.Measurement
	Curve       models.ResponseCurve
	// Offset is the alignment actually applied to the capture.
	Offset int
}

// Runner composes stimulus generation and the duplex engine.
type Runner struct {
	Engine *audioio.Engine
	// Directory, when set, is checked before any device is opened.
	Directory  *audioio.DeviceDirectory
	BufferSize int
	Amplitude  float64
}

func NewRunner(engine *audioio.Engine, directory *audioio.DeviceDirectory) *Runner {
	return &Runner{
		Engine:     engine,
		Directory:  directory,
		BufferSize: audioio.DefaultBufferSize,
		Amplitude:  DefaultAmplitude,
	}
}

// RunSweep plays a scaled chirp through the DUT and returns the padded
// stimulus as played with the raw capture.
func (r *Runner) RunSweep(req SweepRequest) (models.Measurement, error) {
	if r.Directory != nil {
		if err := r.Directory.Validate(req.InputDevice, req.OutputDevice); err != nil {
			return models.Measurement{}, err
		}
	}

	spec := req.StimulusSpec()
	chirp, err := signal.Chirp(spec)
	if err != nil {
		return models.Measurement{}, fmt.Errorf("cannot generate stimulus: %w", err)
	}
	amplitude := r.Amplitude
	if amplitude == 0 {
		amplitude = DefaultAmplitude
	}
	stimulus := signal.Scale(chirp, amplitude)

	trace := models.NewTrace("bench.Runner.RunSweep")
	log.Info().Float64("start_freq", spec.StartFreq).Float64("end_freq", spec.EndFreq).Float64("duration", spec.Duration).Float64("amplitude", amplitude).Msg("running sweep")

	played, captured, err := r.Engine.RunSession(audioio.StreamConfig{
		InputDevice:  req.InputDevice,
		OutputDevice: req.OutputDevice,
		SampleRate:   spec.SampleRate,
		BufferSize:   r.BufferSize,
	}, stimulus)
	if err != nil {
		return models.Measurement{}, err
	}
	trace.MarkProcessed("audioio.Engine.RunSession")
	trace.Log()

	return models.Measurement{Stimulus: played, Captured: captured, Trace: trace}, nil
}

// Measure runs a sweep and turns it into a response curve.
func (r *Runner) Measure(req SweepRequest) (Result, error) {
	m, err := r.RunSweep(req)
	if err != nil {
		return Result{}, err
	}
	return Analyze(m, req.AlignOffset, req.SmoothWindow, req.Points)
}

// Analyze aligns the capture of m, computes its response and optionally
// smooths and decimates it.
func Analyze(m models.Measurement, alignOffset, smoothWindow, points int) (Result, error) {
	aligned, offset, err := analysis.Align(m.Stimulus, m.Captured, alignOffset)
	if err != nil {
		return Result{}, err
	}
	curve, err := analysis.Compare(m.Stimulus, aligned)
	if err != nil {
		return Result{}, err
	}
	if smoothWindow > 1 {
		if curve.ResponseDb, err = analysis.Smooth(curve.ResponseDb, smoothWindow); err != nil {
			return Result{}, err
		}
	}
	log.Debug().Int("offset", offset).Int("bins", curve.Len()).Int("smooth_window", smoothWindow).Msg("response computed")

	return Result{
		Measurement: m,
		Curve:       curve.Decimate(points),
		Offset:      offset,
	}, nil
}
