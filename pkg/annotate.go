package recon

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame names a reference frame known to the geometry provider.
type Frame int

const (
	FrameInstrument Frame = iota
	FrameSpacecraft
	FramePointing
)

func (f Frame) String() string {
	switch f {
	case FrameInstrument:
		return "INSTRUMENT"
	case FrameSpacecraft:
		return "SPACECRAFT"
	case FramePointing:
		return "POINTING"
	default:
		return "UNKNOWN"
	}
}

// StateVector is a position + velocity pair in a named frame (km, km/s).
type StateVector struct {
	Position r3.Vec
	Velocity r3.Vec
}

// Geometry is the capability interface over the ephemeris service: per-time
// frame rotation of vectors and per-time spacecraft state. Implementations
// must fail with *ErrCoverage when a timestamp falls outside the loaded
// coverage window; the annotation stage treats that as fatal for the batch.
type Geometry interface {
	Rotate(et []float64, v []r3.Vec, from, to Frame) ([]r3.Vec, error)
	State(et []float64, frame Frame) ([]StateVector, error)
}

// GetAnnotatedParticleVelocity transforms the instrument-frame velocity of
// every event, at that event's own timestamp, into the spacecraft frame and
// the despun pointing frame, and applies the Compton-Getting correction
// (spacecraft velocity added in the pointing frame) for the heliospheric
// velocity. Rotations are time-varying, so this is strictly per event.
func GetAnnotatedParticleVelocity(geo Geometry, et []float64, v [][3]float64) (vSC, vDPS, vHelio [][3]float64, err error) {
	vecs := make([]r3.Vec, len(v))
	for i := range v {
		vecs[i] = r3.Vec{X: v[i][0], Y: v[i][1], Z: v[i][2]}
	}

	scVecs, err := geo.Rotate(et, vecs, FrameInstrument, FrameSpacecraft)
	if err != nil {
		return nil, nil, nil, err
	}
	dpsVecs, err := geo.Rotate(et, vecs, FrameInstrument, FramePointing)
	if err != nil {
		return nil, nil, nil, err
	}
	states, err := geo.State(et, FramePointing)
	if err != nil {
		return nil, nil, nil, err
	}

	vSC = make([][3]float64, len(v))
	vDPS = make([][3]float64, len(v))
	vHelio = make([][3]float64, len(v))
	for i := range v {
		vSC[i] = [3]float64{scVecs[i].X, scVecs[i].Y, scVecs[i].Z}
		vDPS[i] = [3]float64{dpsVecs[i].X, dpsVecs[i].Y, dpsVecs[i].Z}
		helio := r3.Add(states[i].Velocity, dpsVecs[i])
		vHelio[i] = [3]float64{helio.X, helio.Y, helio.Z}
	}
	return vSC, vDPS, vHelio, nil
}

// SpinGeometry is the built-in geometry provider: a fixed mounting rotation
// from instrument to spacecraft, a time-linear despin about the spacecraft
// spin axis for the pointing frame, and a configured spacecraft state. A
// coverage window bounds the valid ephemeris times; queries outside it fail
// closed like a missing kernel.
type SpinGeometry struct {
	Mount           r3.Rotation
	SpinRate        float64 // rad/s about +Z
	SpinPhaseAtZero float64 // rad at et=0
	CoverageStart   float64
	CoverageEnd     float64
	SpacecraftVel   r3.Vec // km/s, pointing frame
}

// NewSpinGeometry builds the provider from configuration. Mount is a
// rotation about +Z by the mount azimuth followed by a tilt about +Y.
func NewSpinGeometry(config Configuration) *SpinGeometry {
	const degToRad = math.Pi / 180
	az := r3.NewRotation(config.MountAzimuthDeg*degToRad, r3.Vec{Z: 1})
	tilt := r3.NewRotation(config.MountTiltDeg*degToRad, r3.Vec{Y: 1})
	return &SpinGeometry{
		Mount:           composeRotations(tilt, az),
		SpinRate:        config.SpinRateDegPerSec * degToRad,
		SpinPhaseAtZero: config.SpinPhaseAtEpoch,
		CoverageStart:   config.CoverageStart,
		CoverageEnd:     config.CoverageEnd,
		SpacecraftVel:   r3.Vec{X: config.SpacecraftVel[0], Y: config.SpacecraftVel[1], Z: config.SpacecraftVel[2]},
	}
}

// composeRotations returns the rotation applying second after first.
func composeRotations(second, first r3.Rotation) r3.Rotation {
	return r3.Rotation(quat.Mul(quat.Number(second), quat.Number(first)))
}

func (g *SpinGeometry) checkCoverage(et []float64) error {
	for _, t := range et {
		if t < g.CoverageStart || t > g.CoverageEnd {
			return &ErrCoverage{Et: t, Start: g.CoverageStart, End: g.CoverageEnd}
		}
	}
	return nil
}

func (g *SpinGeometry) Rotate(et []float64, v []r3.Vec, from, to Frame) ([]r3.Vec, error) {
	if from != FrameInstrument {
		return nil, fmt.Errorf("unsupported frame pair %v -> %v", from, to)
	}
	if err := g.checkCoverage(et); err != nil {
		return nil, err
	}
	out := make([]r3.Vec, len(v))
	switch to {
	case FrameSpacecraft:
		for i := range v {
			out[i] = g.Mount.Rotate(v[i])
		}
	case FramePointing:
		for i := range v {
			phase := g.SpinPhaseAtZero + g.SpinRate*et[i]
			despin := r3.NewRotation(-phase, r3.Vec{Z: 1})
			out[i] = despin.Rotate(g.Mount.Rotate(v[i]))
		}
	default:
		return nil, fmt.Errorf("unsupported frame pair %v -> %v", from, to)
	}
	return out, nil
}

func (g *SpinGeometry) State(et []float64, frame Frame) ([]StateVector, error) {
	if frame != FramePointing {
		return nil, fmt.Errorf("unsupported state frame %v", frame)
	}
	if err := g.checkCoverage(et); err != nil {
		return nil, err
	}
	states := make([]StateVector, len(et))
	for i := range et {
		states[i] = StateVector{Velocity: g.SpacecraftVel}
	}
	return states, nil
}
