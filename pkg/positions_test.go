package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFrontXPosition(t *testing.T) {
	t.Parallel()
	cal := DefaultCalibration()

	t.Run("start side selects the anode offset", func(t *testing.T) {
		t.Parallel()
		startType := []int64{int64(StartTypeLeft), int64(StartTypeRight)}
		tdc := []float64{0, 0}

		xf := GetFrontXPosition(startType, tdc, cal)
		require.Len(t, xf, 2)
		assert.InDelta(t, cal.XFTLTOFF, xf[0], 1e-12)
		assert.InDelta(t, cal.XFTRTOFF, xf[1], 1e-12)
	})

	t.Run("tdc code enters negated", func(t *testing.T) {
		t.Parallel()
		xf := GetFrontXPosition([]int64{1}, []float64{100}, cal)
		assert.InDelta(t, cal.XFTSC*-100+cal.XFTLTOFF, xf[0], 1e-12)
	})
}

func TestGetFrontYPosition(t *testing.T) {
	t.Parallel()
	cal := DefaultCalibration()

	t.Run("back hit at the estimate gives the minimum distance", func(t *testing.T) {
		t.Parallel()
		d, yf := GetFrontYPosition([]int64{1, 2}, []float64{4000, -4000}, cal)
		require.Len(t, d, 2)
		assert.InDelta(t, cal.DSlitFoil+cal.SlitZ, d[0], 1e-9)
		assert.InDelta(t, cal.DSlitFoil+cal.SlitZ, d[1], 1e-9)
		assert.InDelta(t, 4000, yf[0], 1e-9)
		assert.InDelta(t, -4000, yf[1], 1e-9)
	})

	t.Run("distance never drops below the slit geometry", func(t *testing.T) {
		t.Parallel()
		yb := []float64{-3584, -512, 0, 512, 3584, 4000, -4000}
		startType := make([]int64, len(yb))
		for i := range startType {
			startType[i] = 1
		}

		d, _ := GetFrontYPosition(startType, yb, cal)
		for i := range d {
			assert.GreaterOrEqual(t, d[i], cal.DSlitFoil+cal.SlitZ-1e-9)
		}
	})

	t.Run("y adjustment is quantized to the element pitch", func(t *testing.T) {
		t.Parallel()
		pitch := cal.TrimDistance / cal.NElements

		// Back hits closer than half a pitch to the estimate collapse onto it.
		d, yf := GetFrontYPosition([]int64{1}, []float64{4000 - pitch/2*100 + 1}, cal)
		assert.InDelta(t, cal.DSlitFoil+cal.SlitZ, d[0], 1e-9)
		assert.InDelta(t, 4000, yf[0], 1e-9)
	})
}

func TestGetPHTofAndBackPositions(t *testing.T) {
	t.Parallel()
	cal := DefaultCalibration()

	batch := makeBatch(3)
	batch.StartType = []int64{1, 1, 2}
	batch.StopType = []int64{1, 11, 2} // top, ssd, bottom
	for _, col := range [][]float64{batch.StopNorthTDC, batch.StopSouthTDC, batch.StopEastTDC, batch.StopWestTDC} {
		for i := range col {
			col[i] = 2000
		}
	}
	xf := make([]float64, 3)

	tof, t2, xb, yb := GetPHTofAndBackPositions(batch, xf, cal)
	require.Len(t, tof, 2)
	require.Len(t, t2, 2)
	require.Len(t, xb, 2)
	require.Len(t, yb, 2)

	// Corner normalization: spN=2000, spS=1998, spE=2001, spW=1999.
	assert.InDelta(t, cal.XBkTp.Apply(-2), xb[0], 1e-9)
	assert.InDelta(t, cal.YBkTp.Apply(2), yb[0], 1e-9)
	assert.InDelta(t, cal.XBkBt.Apply(-2), xb[1], 1e-9)

	wantT2Top := cal.TOFSC*7998 + cal.TOFTPOFF
	wantT2Bot := cal.TOFSC*7998 + cal.TOFBTOFF
	assert.InDelta(t, wantT2Top, t2[0], 1e-9)
	assert.InDelta(t, wantT2Bot, t2[1], 1e-9)

	// xf is zero, so the start-anode propagation term vanishes.
	assert.InDelta(t, wantT2Top*100, tof[0], 1e-9)
	assert.InDelta(t, wantT2Bot*100, tof[1], 1e-9)
}

func TestGetSSDBackPositionAndTofOffset(t *testing.T) {
	t.Parallel()
	cal := DefaultCalibration()

	batch := makeBatch(3)
	batch.StartType = []int64{1, 1, 2}
	batch.StopType = []int64{11, 1, 15}

	yb, tofOffset, ssdNumber := GetSSDBackPositionAndTofOffset(batch, cal)
	require.Len(t, yb, 2)
	assert.Equal(t, []int{3, 7}, ssdNumber)
	assert.InDelta(t, cal.SSD[3].YBack, yb[0], 1e-12)
	assert.InDelta(t, cal.SSD[7].YBack, yb[1], 1e-12)
	// Left start picks the left offset, right start the right one.
	assert.InDelta(t, cal.SSD[3].TofOffsetLeft, tofOffset[0], 1e-12)
	assert.InDelta(t, cal.SSD[7].TofOffsetRight, tofOffset[1], 1e-12)
}

func TestGetSSDTof(t *testing.T) {
	t.Parallel()
	cal := DefaultCalibration()

	batch := makeBatch(2)
	batch.StartType = []int64{1, 1}
	batch.StopType = []int64{11, 1}
	batch.CoinDiscreteTDC = []float64{500, 0}
	xf := []float64{0, 0}

	tof := GetSSDTof(batch, xf, cal)
	require.Len(t, tof, 1)
	want := (cal.TOFSSDSC*500 + cal.SSD[3].TofOffsetLeft + cal.TOFSSDTOTOFF) * 100
	assert.InDelta(t, want, tof[0], 1e-9)
}

func TestGetPathLength(t *testing.T) {
	t.Parallel()

	t.Run("no in-plane displacement reduces to d", func(t *testing.T) {
		t.Parallel()
		r := GetPathLength([]float64{120}, []float64{-50}, []float64{120}, []float64{-50}, []float64{48.28})
		assert.InDelta(t, 48.28, r[0], 1e-12)
	})

	t.Run("3-4-5 triangle", func(t *testing.T) {
		t.Parallel()
		// 400 hundredths of mm is 4 mm of x displacement.
		r := GetPathLength([]float64{0}, []float64{0}, []float64{400}, []float64{0}, []float64{3})
		assert.InDelta(t, 5, r[0], 1e-12)
	})

	t.Run("symmetric under displacement sign", func(t *testing.T) {
		t.Parallel()
		a := GetPathLength([]float64{0}, []float64{0}, []float64{250}, []float64{-730}, []float64{48.28})
		b := GetPathLength([]float64{0}, []float64{0}, []float64{-250}, []float64{730}, []float64{48.28})
		assert.Equal(t, a[0], b[0])
		assert.Greater(t, a[0], 48.28)
	})
}
