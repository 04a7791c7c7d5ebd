package recon

import (
	"fmt"
	"math"
)

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// scatter writes the gathered stage output back into the full-length column.
// A length mismatch between the stage output and its index set is a fatal
// integrity violation.
func scatter(name string, dst []float64, indices []int, src []float64) error {
	if len(src) != len(indices) {
		return &ErrFieldLength{Field: name, Want: len(indices), Got: len(src)}
	}
	for j, i := range indices {
		dst[i] = src[j]
	}
	return nil
}

func scatterStrings(name string, dst []string, indices []int, src []string) error {
	if len(src) != len(indices) {
		return &ErrFieldLength{Field: name, Want: len(indices), Got: len(src)}
	}
	for j, i := range indices {
		dst[i] = src[j]
	}
	return nil
}

func gatherInt64(src []int64, indices []int) []int64 {
	out := make([]int64, len(indices))
	for j, i := range indices {
		out[j] = src[i]
	}
	return out
}

func gatherFloat(src []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for j, i := range indices {
		out[j] = src[i]
	}
	return out
}

// Reconstruct runs the full direct-event chain over one raw batch: classify,
// reconstruct positions and TOFs per branch, resolve path length and species,
// derive velocity and angles, annotate frames, assemble. It is a pure
// function of the batch, the calibration and the geometry provider; the same
// inputs always produce bit-identical output.
func Reconstruct(batch *RawEventBatch, cal *Calibration, geo Geometry) (*DirectEventSet, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	// Drop events with invalid start type.
	b := FilterValidStart(batch)
	n := b.Len()

	logger.Info(fmt.Sprintf("Reconstructing %d events (%d raw)", n, batch.Len()), "recon")

	// Output columns, pre-filled with sentinels. Every later write is a
	// masked scatter into these.
	yf := nanSlice(n)
	xb := nanSlice(n)
	yb := nanSlice(n)
	xc := nanSlice(n)
	d := nanSlice(n)
	r := nanSlice(n)
	tof := nanSlice(n)
	etof := nanSlice(n)
	ctof := nanSlice(n)
	vmag := nanSlice(n)
	energy := nanSlice(n)
	t2 := nanSlice(n)
	species := make([]string, n)
	for i := range species {
		species[i] = SpeciesUnknown
	}

	xf := GetFrontXPosition(b.StartType, b.StartPosTDC, cal)
	phIndices, ssdIndices := ClassifyStopTypes(b.StopType)

	// Pulse height branch.
	phTof, phT2, phXb, phYb := GetPHTofAndBackPositions(b, xf, cal)
	if err := scatter("ph_tof", tof, phIndices, phTof); err != nil {
		return nil, err
	}
	if err := scatter("ph_t2", t2, phIndices, phT2); err != nil {
		return nil, err
	}
	if err := scatter("ph_xb", xb, phIndices, phXb); err != nil {
		return nil, err
	}
	if err := scatter("ph_yb", yb, phIndices, phYb); err != nil {
		return nil, err
	}
	phD, phYf := GetFrontYPosition(gatherInt64(b.StartType, phIndices), phYb, cal)
	if err := scatter("ph_d", d, phIndices, phD); err != nil {
		return nil, err
	}
	if err := scatter("ph_yf", yf, phIndices, phYf); err != nil {
		return nil, err
	}
	phEnergy := GetEnergyPulseHeight(b, phXb, phYb, cal)
	if err := scatter("ph_energy", energy, phIndices, phEnergy); err != nil {
		return nil, err
	}
	phR := GetPathLength(gatherFloat(xf, phIndices), phYf, phXb, phYb, phD)
	if err := scatter("ph_r", r, phIndices, phR); err != nil {
		return nil, err
	}
	if err := scatterStrings("ph_species", species, phIndices,
		DetermineSpecies(phTof, phR, BranchPH, cal)); err != nil {
		return nil, err
	}
	phEtof, phXc := GetCoincidencePositions(b.Select(phIndices), phT2, cal)
	if err := scatter("ph_etof", etof, phIndices, phEtof); err != nil {
		return nil, err
	}
	if err := scatter("ph_xc", xc, phIndices, phXc); err != nil {
		return nil, err
	}
	phCtof, phVmag := GetCtof(phTof, phR, BranchPH, cal)
	if err := scatter("ph_ctof", ctof, phIndices, phCtof); err != nil {
		return nil, err
	}
	if err := scatter("ph_vmag", vmag, phIndices, phVmag); err != nil {
		return nil, err
	}

	// SSD branch. No coincidence detector on this path: back x, coincidence
	// x and the secondary TOF are zero by definition.
	ssdTof := GetSSDTof(b, xf, cal)
	if err := scatter("ssd_tof", tof, ssdIndices, ssdTof); err != nil {
		return nil, err
	}
	ssdYb, _, ssdNumber := GetSSDBackPositionAndTofOffset(b, cal)
	if err := scatter("ssd_yb", yb, ssdIndices, ssdYb); err != nil {
		return nil, err
	}
	zeros := make([]float64, len(ssdIndices))
	if err := scatter("ssd_xb", xb, ssdIndices, zeros); err != nil {
		return nil, err
	}
	if err := scatter("ssd_xc", xc, ssdIndices, zeros); err != nil {
		return nil, err
	}
	if err := scatter("ssd_etof", etof, ssdIndices, zeros); err != nil {
		return nil, err
	}
	ssdD, ssdYf := GetFrontYPosition(gatherInt64(b.StartType, ssdIndices), ssdYb, cal)
	if err := scatter("ssd_d", d, ssdIndices, ssdD); err != nil {
		return nil, err
	}
	if err := scatter("ssd_yf", yf, ssdIndices, ssdYf); err != nil {
		return nil, err
	}
	ssdEnergy := GetEnergySSD(b, ssdNumber, cal)
	if err := scatter("ssd_energy", energy, ssdIndices, ssdEnergy); err != nil {
		return nil, err
	}
	ssdR := GetPathLength(gatherFloat(xf, ssdIndices), ssdYf, zeros, ssdYb, ssdD)
	if err := scatter("ssd_r", r, ssdIndices, ssdR); err != nil {
		return nil, err
	}
	if err := scatterStrings("ssd_species", species, ssdIndices,
		DetermineSpecies(ssdTof, ssdR, BranchSSD, cal)); err != nil {
		return nil, err
	}
	ssdCtof, ssdVmag := GetCtof(ssdTof, ssdR, BranchSSD, cal)
	if err := scatter("ssd_ctof", ctof, ssdIndices, ssdCtof); err != nil {
		return nil, err
	}
	if err := scatter("ssd_vmag", vmag, ssdIndices, ssdVmag); err != nil {
		return nil, err
	}

	// Velocity, energy and angles over the merged columns.
	v := GetDEVelocity(xf, yf, xb, yb, d, tof)
	tofEnergy := GetDEEnergyKev(v, species)
	az, el := GetDEAzEl(v)

	// Annotated frames, each event at its own timestamp. Coverage gaps are
	// fatal: consumers assume positional alignment, so no event may be
	// silently skipped.
	vSC, vDPS, vHelio, err := GetAnnotatedParticleVelocity(geo, b.EventTimes, v)
	if err != nil {
		return nil, err
	}

	set := &DirectEventSet{
		Epoch:             b.Epoch,
		XFront:            xf,
		YFront:            yf,
		XBack:             xb,
		YBack:             yb,
		XCoin:             xc,
		FrontBackDistance: d,
		PathLength:        r,
		TofStartStop:      tof,
		TofStopCoin:       etof,
		TofCorrected:      ctof,
		VelocityMagnitude: vmag,
		Velocity:          v,
		VelocitySC:        vSC,
		VelocityDPSSC:     vDPS,
		VelocityDPSHelio:  vHelio,
		Energy:            energy,
		TofEnergy:         tofEnergy,
		Species:           species,
		Azimuth:           az,
		Elevation:         el,
		CoincidenceType:   b.CoinType,
		StartTypeCode:     b.StartType,
		EventTypeCode:     b.StopType,
		EventMET:          b.EventMET,
		EventTimes:        b.EventTimes,
	}
	if err := set.validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// validate is the assembler integrity gate: every column must match the
// filtered event count. A mismatch is never truncated or padded away.
func (s *DirectEventSet) validate() error {
	n := s.Len()
	columns := []struct {
		name string
		got  int
	}{
		{"x_front", len(s.XFront)},
		{"y_front", len(s.YFront)},
		{"x_back", len(s.XBack)},
		{"y_back", len(s.YBack)},
		{"x_coin", len(s.XCoin)},
		{"front_back_distance", len(s.FrontBackDistance)},
		{"path_length", len(s.PathLength)},
		{"tof_start_stop", len(s.TofStartStop)},
		{"tof_stop_coin", len(s.TofStopCoin)},
		{"tof_corrected", len(s.TofCorrected)},
		{"velocity_magnitude", len(s.VelocityMagnitude)},
		{"direct_event_velocity", len(s.Velocity)},
		{"velocity_sc", len(s.VelocitySC)},
		{"velocity_dps_sc", len(s.VelocityDPSSC)},
		{"velocity_dps_helio", len(s.VelocityDPSHelio)},
		{"energy", len(s.Energy)},
		{"tof_energy", len(s.TofEnergy)},
		{"species", len(s.Species)},
		{"azimuth", len(s.Azimuth)},
		{"elevation", len(s.Elevation)},
		{"coincidence_type", len(s.CoincidenceType)},
		{"start_type", len(s.StartTypeCode)},
		{"event_type", len(s.EventTypeCode)},
		{"de_event_met", len(s.EventMET)},
		{"event_times", len(s.EventTimes)},
	}
	for _, c := range columns {
		if c.got != n {
			return &ErrFieldLength{Field: c.name, Want: n, Got: c.got}
		}
	}
	return nil
}
