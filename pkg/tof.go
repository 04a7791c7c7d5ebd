package recon

import "math"

// Branch selects the detection path for branch-specific constants.
type Branch string

const (
	BranchPH  Branch = "PH"
	BranchSSD Branch = "SSD"
)

// calculateEtofXc derives the stop-to-coincidence TOF (tenths of ns) and the
// coincidence-plane x (mm) for rows that share one coincidence side. t2 is
// the provisional two-way TOF from the stop anode.
func calculateEtofXc(coinNTDC, coinSTDC, t2 []float64, coin CoinType, cal *Calibration) (etof, xc []float64) {
	etof = make([]float64, len(t2))
	xc = make([]float64, len(t2))
	for i := range t2 {
		coinN := cal.CoinNNorm.Apply(coinNTDC[i])
		coinS := cal.CoinSNorm.Apply(coinSTDC[i])
		t1 := coinN + coinS

		var t2Coin float64
		if coin == CoinTypeTop {
			t2Coin = cal.ETOFSC*t1 + cal.ETOFTPOFF
			xc[i] = cal.XCoinTp.Apply(coinS - coinN)
		} else {
			t2Coin = cal.ETOFSC*t1 + cal.ETOFBTOFF
			xc[i] = cal.XCoinBt.Apply(coinS - coinN)
		}
		// Time for the coincidence signal to propagate along the anode.
		etof[i] = (t2Coin - t2[i]) * 100
	}
	return etof, xc
}

// GetCoincidencePositions dispatches on the coincidence type code and returns
// the stop-to-coincidence TOF (tenths of ns) and the coincidence-plane x in
// hundredths of mm, aligned with the given pulse-height subset. Rows whose
// coincidence code matches neither side keep NaN.
func GetCoincidencePositions(batch *RawEventBatch, t2 []float64, cal *Calibration) (etof, xc []float64) {
	n := batch.Len()
	etof = make([]float64, n)
	xc = make([]float64, n)
	for i := range etof {
		etof[i] = math.NaN()
		xc[i] = math.NaN()
	}

	for _, coin := range []CoinType{CoinTypeTop, CoinTypeBottom} {
		var indices []int
		for i, code := range batch.CoinType {
			if CoinType(code) == coin {
				indices = append(indices, i)
			}
		}
		if len(indices) == 0 {
			continue
		}
		coinN := make([]float64, len(indices))
		coinS := make([]float64, len(indices))
		t2Sub := make([]float64, len(indices))
		for j, i := range indices {
			coinN[j] = batch.CoinNorthTDC[i]
			coinS[j] = batch.CoinSouthTDC[i]
			t2Sub[j] = t2[i]
		}
		etofSub, xcSub := calculateEtofXc(coinN, coinS, t2Sub, coin, cal)
		for j, i := range indices {
			etof[i] = etofSub[j]
			xc[i] = xcSub[j] * 100
		}
	}
	return etof, xc
}

// GetCtof normalizes the start-stop TOF to the branch reference distance and
// derives the corresponding velocity magnitude (km/s). Non-positive or
// undefined TOF and path length resolve to NaN, never to a negative speed.
func GetCtof(tof, pathLength []float64, branch Branch, cal *Calibration) (ctof, vmag []float64) {
	dMin := cal.DMinPH
	if branch == BranchSSD {
		dMin = cal.DMinSSD
	}
	ctof = make([]float64, len(tof))
	vmag = make([]float64, len(tof))
	for i := range tof {
		if math.IsNaN(tof[i]) || tof[i] <= 0 || pathLength[i] <= 0 {
			ctof[i] = math.NaN()
			vmag[i] = math.NaN()
			continue
		}
		ctof[i] = tof[i] * dMin / pathLength[i]
		// ctof is tenths of ns over dMin mm; mm/ns is 1000 km/s.
		vmag[i] = dMin / (ctof[i] / 10) * 1000
	}
	return ctof, vmag
}
