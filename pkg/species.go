package recon

// DetermineSpecies bins each event by its corrected TOF against the branch
// discriminant band. Hydrogen requires ctof strictly inside
// (CTOFSpeciesMin, CTOFSpeciesMax); boundary values stay UNKNOWN, as do
// events with undefined ctof. Heavier-species bands sit above the hydrogen
// band and are labeled by the same rule.
func DetermineSpecies(tof, pathLength []float64, branch Branch, cal *Calibration) []string {
	species := make([]string, len(tof))
	ctof, _ := GetCtof(tof, pathLength, branch, cal)
	for i := range species {
		switch {
		case ctof[i] > cal.CTOFSpeciesMin && ctof[i] < cal.CTOFSpeciesMax:
			species[i] = SpeciesHydrogen
		default:
			// NaN comparisons land here as well.
			species[i] = SpeciesUnknown
		}
	}
	return species
}
