// Package solver computes geometric time-stretch parameters.
//
// A source pattern of M segments is replayed for N steps; step k lasts
// deltas[k mod M] * s^k ticks. Given any two of {N, loop scale s^M, total
// duration ratio R, final scale s^(N-1)} Solve derives the rest, then
// measures how far the result drifts once every step is rounded to whole
// ticks.
//
// Solve is a pure function and safe for concurrent use.
package solver

import (
	"fmt"
	"math"
)

const (
	// FallbackSegment is the single segment length (ticks) substituted for
	// an empty or zero-length source.
	FallbackSegment = 960.0

	// MaxRepetitions bounds N when it is read from the inputs.
	MaxRepetitions = 1 << 20

	defaultBPM = 120.0
	defaultPPQ = 960
)

// Params are the inputs of a solve. Only the fields locked by Mode are
// read; see Mode.Locked.
type Params struct {
	Mode Mode

	Loops      float64 // target repetitions, in loops of the source pattern
	LoopScale  float64 // per-loop scale
	TotalScale float64 // output duration / source duration
	FinalScale float64 // last step relative to the first

	Deltas         []float64 // segment durations in ticks
	SourceDuration float64   // sum of Deltas
	BPM            float64
	PPQ            int

	// IntegerLoops forces N onto a multiple of the segment count.
	IntegerLoops bool
}

// Result holds solved parameters plus quantization diagnostics.
type Result struct {
	Success bool
	Message string
	Mode    Mode

	Repetitions int     // N, total steps
	Segments    int     // M
	StepScale   float64 // per-step scale
	LoopScale   float64 // StepScale^M
	TotalScale  float64 // ideal ratio for Repetitions and StepScale
	FinalScale  float64 // StepScale^(N-1)

	// FitError is |TotalScale - requested total scale| for modes that lock
	// the total scale; non-zero when an integer N cannot hit it exactly.
	FitError float64

	RealizedScale float64 // ratio after rounding each step to whole ticks
	ErrorTicks    float64
	ErrorMs       float64
}

// Loops returns the repetition count in loops of the source pattern.
func (r Result) Loops() float64 {
	if r.Segments < 1 {
		return float64(r.Repetitions)
	}
	return float64(r.Repetitions) / float64(r.Segments)
}

func (r Result) String() string {
	if !r.Success {
		return "failed: " + r.Message
	}
	return fmt.Sprintf("N=%d (%.2f loops) loop=%.5f step=%.6f total=%.5f final=%.5f err=%.2fms",
		r.Repetitions, r.Loops(), r.LoopScale, r.StepScale, r.TotalScale, r.FinalScale, r.ErrorMs)
}

// Solve derives the unlocked parameters for p.Mode. Invalid inputs are
// reported through Result.Success and Result.Message.
func Solve(p Params) Result {
	deltas, sourceDur := p.Deltas, p.SourceDuration
	if len(deltas) == 0 || sourceDur <= epsilon {
		deltas = []float64{FallbackSegment}
		sourceDur = FallbackSegment
	}

	m := len(deltas)
	stride := 1
	if p.IntegerLoops {
		stride = m
	}

	res := Result{
		Mode:       p.Mode,
		Segments:   m,
		StepScale:  1,
		LoopScale:  1,
		FinalScale: 1,
	}

	if msg := validate(p); msg != "" {
		res.Message = msg
		return res
	}

	var n int
	if !p.Mode.fitsRepetitions() {
		reps := math.Round(p.Loops * float64(m))
		if reps > MaxRepetitions {
			res.Message = fmt.Sprintf("repetitions exceed limit of %d steps", MaxRepetitions)
			return res
		}
		n = roundToStride(int(reps), stride)
	}

	s := 1.0
	switch p.Mode {
	case TargetTotalScale:
		s = solveStepScale(deltas, n, p.TotalScale, sourceDur)
		res.Message = "solved loop scale"

	case FixedBeatRatio:
		s = math.Pow(p.LoopScale, 1/float64(m))
		res.Message = "calculated total scale"

	case MatchBeatEnd:
		if n > 1 {
			s = math.Pow(p.FinalScale, 1/float64(n-1))
		}
		res.Message = "solved loop scale from final scale"

	case FitToCurve:
		s = math.Pow(p.LoopScale, 1/float64(m))
		n = fitRepetitions(deltas, s, p.TotalScale, sourceDur, stride)
		res.Message = "solved repetitions (curve)"

	case FitEndAndRatio:
		n = fitRepetitionsFixedEnd(deltas, p.FinalScale, p.TotalScale, sourceDur, stride)
		if n > 1 {
			s = math.Pow(p.FinalScale, 1/float64(n-1))
		}
		res.Message = "solved repetitions (final+ratio)"

	default:
		res.Message = fmt.Sprintf("unknown mode %d", int(p.Mode))
		return res
	}

	res.Repetitions = n
	res.StepScale = s
	res.LoopScale = math.Pow(s, float64(m))
	if p.Mode.IsLocked(ParamLoopScale) {
		res.LoopScale = p.LoopScale
	}
	res.FinalScale = math.Pow(s, float64(n-1))
	if p.Mode == FitEndAndRatio {
		res.FinalScale = p.FinalScale
	}
	res.TotalScale = Ratio(deltas, n, s, sourceDur)
	if math.IsInf(res.TotalScale, 0) || math.IsNaN(res.TotalScale) {
		res.Message = "scale overflows the output duration"
		return res
	}
	if p.Mode.IsLocked(ParamTotalScale) {
		res.FitError = math.Abs(res.TotalScale - p.TotalScale)
	}
	res.Success = true

	verify(&res, deltas, sourceDur, p.BPM, p.PPQ)
	return res
}

// validate checks the locked inputs of p.Mode, returning a user-facing
// reason on failure.
func validate(p Params) string {
	for _, param := range p.Mode.Locked() {
		var v float64
		var name string
		switch param {
		case ParamLoops:
			v, name = p.Loops, "repetitions"
		case ParamLoopScale:
			v, name = p.LoopScale, "loop scale"
		case ParamTotalScale:
			v, name = p.TotalScale, "total scale"
		case ParamFinalScale:
			v, name = p.FinalScale, "final scale"
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return name + " must be a finite number"
		}
		if v <= 0 {
			return name + " must be > 0"
		}
	}
	return ""
}

// verify re-sums the tick-rounded step durations to measure quantization
// drift against the ideal duration.
func verify(res *Result, deltas []float64, sourceDur, bpm float64, ppq int) {
	var ideal, quantized float64
	for _, dt := range StepDurations(deltas, res.Repetitions, res.StepScale) {
		ideal += dt
		quantized += math.Round(dt)
	}

	res.RealizedScale = quantized / sourceDur
	res.ErrorTicks = math.Abs(quantized - ideal)

	if ppq <= 0 {
		ppq = defaultPPQ
	}
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		bpm = defaultBPM
	}
	res.ErrorMs = res.ErrorTicks * 60000 / (bpm * float64(ppq))
}
