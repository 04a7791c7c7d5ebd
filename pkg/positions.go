package recon

import "math"

// GetFrontXPosition converts the start-position TDC code into the front-plane
// x coordinate (hundredths of mm). The start side selects the anode offset;
// the TDC code enters negated because the start anode counts down.
func GetFrontXPosition(startType []int64, startPosTDC []float64, cal *Calibration) []float64 {
	xf := make([]float64, len(startType))
	for i := range startType {
		off := cal.XFTLTOFF
		if StartType(startType[i]) == StartTypeRight {
			off = cal.XFTRTOFF
		}
		xf[i] = cal.XFTSC*-startPosTDC[i] + off
	}
	return xf
}

// GetFrontYPosition computes the front-back separation distance d (mm) and
// the refined front-plane y coordinate (hundredths of mm) from the start side
// and the back-plane y hit. The back hit is projected through the slit onto
// the foil; the y adjustment is quantized to the anode element pitch
// (TrimDistance over NElements).
func GetFrontYPosition(startType []int64, yb []float64, cal *Calibration) (d, yf []float64) {
	d = make([]float64, len(startType))
	yf = make([]float64, len(startType))
	pitch := cal.TrimDistance / cal.NElements
	for i := range startType {
		yfEstimate := cal.YfEstimateLeft
		if StartType(startType[i]) == StartTypeRight {
			yfEstimate = cal.YfEstimateRight
		}
		ybMM := yb[i] / 100
		dy := math.Round((yfEstimate-ybMM)/pitch) * pitch
		d[i] = cal.DSlitFoil + math.Sqrt(cal.SlitZ*cal.SlitZ+dy*dy)
		yf[i] = (yfEstimate + dy*cal.DSlitFoil/cal.SlitZ) * 100
	}
	return d, yf
}

// GetPHTofAndBackPositions reconstructs the pulse-height branch: back-plane
// (x,y) in hundredths of mm, the provisional two-way TOF t2 used later for
// the coincidence plane, and the start-stop TOF in tenths of ns. The returned
// slices are gathered over the PH rows only, in batch order.
//
// The four stop-anode TDCs are normalized per corner to cancel channel
// mismatch; position comes from the north-south and east-west differences,
// timing from the four-corner sum.
func GetPHTofAndBackPositions(batch *RawEventBatch, xf []float64, cal *Calibration) (tof, t2, xb, yb []float64) {
	phIndices, _ := ClassifyStopTypes(batch.StopType)
	tof = make([]float64, len(phIndices))
	t2 = make([]float64, len(phIndices))
	xb = make([]float64, len(phIndices))
	yb = make([]float64, len(phIndices))

	for j, i := range phIndices {
		spN := cal.SpNNorm.Apply(batch.StopNorthTDC[i])
		spS := cal.SpSNorm.Apply(batch.StopSouthTDC[i])
		spE := cal.SpENorm.Apply(batch.StopEastTDC[i])
		spW := cal.SpWNorm.Apply(batch.StopWestTDC[i])

		xbCode := spS - spN
		ybCode := spE - spW
		t1 := spN + spS + spE + spW

		if StopType(batch.StopType[i]) == StopTypeTop {
			xb[j] = cal.XBkTp.Apply(xbCode)
			yb[j] = cal.YBkTp.Apply(ybCode)
			t2[j] = cal.TOFSC*t1 + cal.TOFTPOFF
		} else {
			xb[j] = cal.XBkBt.Apply(xbCode)
			yb[j] = cal.YBkBt.Apply(ybCode)
			t2[j] = cal.TOFSC*t1 + cal.TOFBTOFF
		}
		// Propagation delay along the start anode, then tenths of ns.
		tof[j] = (t2[j] + xf[i]*cal.XFTTOF) * 100
	}
	return tof, t2, xb, yb
}

// GetSSDBackPositionAndTofOffset resolves the SSD branch geometry: back-plane
// y (hundredths of mm), the per-element TOF offset selected by start side
// (tenths of ns) and the element index (0-7). Gathered over SSD rows only.
func GetSSDBackPositionAndTofOffset(batch *RawEventBatch, cal *Calibration) (yb, tofOffset []float64, ssdNumber []int) {
	_, ssdIndices := ClassifyStopTypes(batch.StopType)
	yb = make([]float64, len(ssdIndices))
	tofOffset = make([]float64, len(ssdIndices))
	ssdNumber = make([]int, len(ssdIndices))

	for j, i := range ssdIndices {
		element := SSDElement(batch.StopType[i])
		ssdNumber[j] = element
		yb[j] = cal.SSD[element].YBack
		if StartType(batch.StartType[i]) == StartTypeRight {
			tofOffset[j] = cal.SSD[element].TofOffsetRight
		} else {
			tofOffset[j] = cal.SSD[element].TofOffsetLeft
		}
	}
	return yb, tofOffset, ssdNumber
}

// GetSSDTof computes the start-stop TOF for SSD rows (tenths of ns) from the
// discrete coincidence TDC, the per-element offset and the front-x
// propagation correction. xf must be the full-batch front-x array.
func GetSSDTof(batch *RawEventBatch, xf []float64, cal *Calibration) []float64 {
	_, ssdIndices := ClassifyStopTypes(batch.StopType)
	_, tofOffset, _ := GetSSDBackPositionAndTofOffset(batch, cal)

	tof := make([]float64, len(ssdIndices))
	for j, i := range ssdIndices {
		t := cal.TOFSSDSC*batch.CoinDiscreteTDC[i] + tofOffset[j]
		tof[j] = (t + cal.TOFSSDTOTOFF + xf[i]*cal.XFTTOF) * 100
	}
	return tof
}

// GetPathLength returns the 3-D flight path (mm): the perpendicular
// front-back separation combined with the in-plane displacement. Positions
// are hundredths of mm, d is mm.
func GetPathLength(xf, yf, xb, yb, d []float64) []float64 {
	r := make([]float64, len(d))
	for i := range d {
		dx := (xb[i] - xf[i]) / 100
		dy := (yb[i] - yf[i]) / 100
		r[i] = math.Sqrt(d[i]*d[i] + dx*dx + dy*dy)
	}
	return r
}
