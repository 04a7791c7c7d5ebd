package recon

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	protonMassKg = 1.67262192e-27
	joulesPerKeV = 1.602176634e-16
	metersPerKmS = 1e3
	twoPi        = 2 * math.Pi
)

var nanVec = [3]float64{math.NaN(), math.NaN(), math.NaN()}

// GetDEVelocity builds the instrument-frame velocity vector (km/s) from the
// front/back hit geometry and the start-stop TOF. The z component points
// from front to back (negative z, into the instrument). Non-positive TOF is
// undefined physics and yields a NaN vector, not a negative speed.
func GetDEVelocity(xf, yf, xb, yb, d, tof []float64) [][3]float64 {
	v := make([][3]float64, len(tof))
	for i := range tof {
		if math.IsNaN(tof[i]) || tof[i] <= 0 {
			v[i] = nanVec
			continue
		}
		delta := r3.Vec{
			X: (xb[i] - xf[i]) / 100,
			Y: (yb[i] - yf[i]) / 100,
			Z: -d[i],
		}
		// mm over tenths of ns: mm/ns is 1000 km/s.
		scaled := r3.Scale(1000/(tof[i]/10), delta)
		v[i] = [3]float64{scaled.X, scaled.Y, scaled.Z}
	}
	return v
}

// GetDEEnergyKev converts the velocity vector into kinetic energy (keV)
// under the species mass assumption. Only hydrogen rows carry a defined
// energy; other species bins stay NaN until their masses are calibrated.
func GetDEEnergyKev(v [][3]float64, species []string) []float64 {
	energy := make([]float64, len(v))
	for i := range v {
		if species[i] != SpeciesHydrogen {
			energy[i] = math.NaN()
			continue
		}
		mag := r3.Norm(r3.Vec{X: v[i][0], Y: v[i][1], Z: v[i][2]})
		if math.IsNaN(mag) {
			energy[i] = math.NaN()
			continue
		}
		mPerS := mag * metersPerKmS
		energy[i] = 0.5 * protonMassKg * mPerS * mPerS / joulesPerKeV
	}
	return energy
}

// GetDEAzEl derives the pointing angles from the velocity vector: azimuth
// wrapped to [0, 2pi), elevation in [-pi/2, pi/2] measured against the
// instrument boresight.
func GetDEAzEl(v [][3]float64) (az, el []float64) {
	az = make([]float64, len(v))
	el = make([]float64, len(v))
	for i := range v {
		vec := r3.Vec{X: v[i][0], Y: v[i][1], Z: v[i][2]}
		mag := r3.Norm(vec)
		if math.IsNaN(mag) || mag == 0 {
			az[i] = math.NaN()
			el[i] = math.NaN()
			continue
		}
		az[i] = math.Mod(math.Atan2(vec.Y, vec.X), twoPi)
		if az[i] < 0 {
			az[i] += twoPi
		}
		el[i] = math.Asin(-vec.Z / mag)
	}
	return az, el
}

// GetEnergyPulseHeight converts the raw pulse-height code into keV for PH
// rows: a position-dependent pulse deficit is removed using the back-plane
// hit radius, then the stop-side gain applies. Gathered over PH rows only.
func GetEnergyPulseHeight(batch *RawEventBatch, xb, yb []float64, cal *Calibration) []float64 {
	phIndices, _ := ClassifyStopTypes(batch.StopType)
	energy := make([]float64, len(phIndices))
	for j, i := range phIndices {
		gain := cal.EnergyGainTop
		if StopType(batch.StopType[i]) == StopTypeBottom {
			gain = cal.EnergyGainBottom
		}
		deficit := cal.EnergyPosScale * math.Hypot(xb[j]/100, yb[j]/100)
		energy[j] = (batch.EnergyPH[i] - deficit) * gain
	}
	return energy
}

// GetEnergySSD converts the raw energy code into keV for SSD rows using the
// struck element's gain and offset. ssdNumber must align with the SSD rows.
func GetEnergySSD(batch *RawEventBatch, ssdNumber []int, cal *Calibration) []float64 {
	_, ssdIndices := ClassifyStopTypes(batch.StopType)
	energy := make([]float64, len(ssdIndices))
	for j, i := range ssdIndices {
		el := cal.SSD[ssdNumber[j]]
		energy[j] = batch.EnergyPH[i]*el.EnergyGain + el.EnergyOffset
	}
	return energy
}
