package recon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// makeMixedBatch builds the reference scenario: 8 pulse-height events
// alternating start side and stop anode, 6 SSD events on elements 3 and 7,
// plus two fill rows that the start filter must drop.
func makeMixedBatch() *RawEventBatch {
	n := 16
	batch := makeBatch(n)
	for i := 0; i < n; i++ {
		batch.Epoch[i] = int64(1000 + i)
		batch.EventTimes[i] = float64(i) * 0.1
		batch.EventMET[i] = 1e8 + float64(i)
		batch.StartType[i] = int64(StartTypeLeft)
		if i%2 == 1 {
			batch.StartType[i] = int64(StartTypeRight)
		}
		batch.StartPosTDC[i] = 100
		batch.EnergyPH[i] = 900
	}

	// Rows 0-7: pulse height, alternating top and bottom stops.
	for i := 0; i < 8; i++ {
		batch.StopType[i] = int64(StopTypeTop)
		batch.CoinType[i] = int64(CoinTypeTop)
		if i%2 == 1 {
			batch.StopType[i] = int64(StopTypeBottom)
			batch.CoinType[i] = int64(CoinTypeBottom)
		}
		batch.StopNorthTDC[i] = 1000
		batch.StopSouthTDC[i] = 1010
		batch.StopEastTDC[i] = 990
		batch.StopWestTDC[i] = 1005
		batch.CoinNorthTDC[i] = 1000
		batch.CoinSouthTDC[i] = 1020
	}

	// Rows 8-13: SSD stops on elements 3 and 7.
	for i := 8; i < 14; i++ {
		batch.StopType[i] = int64(StopTypeSSDFirst) + 3
		if i%2 == 1 {
			batch.StopType[i] = int64(StopTypeSSDFirst) + 7
		}
		batch.CoinDiscreteTDC[i] = 300
	}

	// Rows 14-15: no start detection.
	batch.StartType[14] = StartTypeFill
	batch.StartType[15] = StartTypeFill
	return batch
}

func testGeometry() Geometry {
	return NewSpinGeometry(Configuration{
		SpinRateDegPerSec: 24,
		MountAzimuthDeg:   15,
		MountTiltDeg:      5,
		CoverageEnd:       1e6,
		SpacecraftVel:     [3]float64{29.8, 0, 0},
	})
}

func TestReconstruct(t *testing.T) {
	t.Parallel()
	cal := DefaultCalibration()
	geo := testGeometry()

	t.Run("mixed batch reconstructs every surviving event", func(t *testing.T) {
		t.Parallel()
		set, err := Reconstruct(makeMixedBatch(), cal, geo)
		require.NoError(t, err)
		require.Equal(t, 14, set.Len())
		require.NoError(t, set.validate())

		// Fill rows are gone, order is preserved.
		assert.Equal(t, int64(1000), set.Epoch[0])
		assert.Equal(t, int64(1013), set.Epoch[13])

		for i := 0; i < 14; i++ {
			assert.False(t, math.IsNaN(set.XFront[i]), "x_front[%d]", i)
			assert.False(t, math.IsNaN(set.YFront[i]), "y_front[%d]", i)
			assert.False(t, math.IsNaN(set.FrontBackDistance[i]), "d[%d]", i)
			assert.False(t, math.IsNaN(set.PathLength[i]), "r[%d]", i)
			assert.Greater(t, set.TofStartStop[i], 0.0, "tof[%d]", i)
		}
	})

	t.Run("valid rows always get a species label", func(t *testing.T) {
		t.Parallel()
		set, err := Reconstruct(makeMixedBatch(), cal, geo)
		require.NoError(t, err)
		require.Equal(t, 14, set.Len())

		// Every row has a defined TOF and path length, so none may fall
		// through to the UNKNOWN sentinel, and the TOF energy is defined.
		for i := 0; i < 14; i++ {
			assert.Equal(t, SpeciesHydrogen, set.Species[i], "species[%d]", i)
			assert.Greater(t, set.TofCorrected[i], cal.CTOFSpeciesMin, "ctof[%d]", i)
			assert.Less(t, set.TofCorrected[i], cal.CTOFSpeciesMax, "ctof[%d]", i)
			assert.False(t, math.IsNaN(set.TofEnergy[i]), "tof_energy[%d]", i)
			assert.False(t, math.IsNaN(set.VelocityMagnitude[i]), "vmag[%d]", i)
		}
	})

	t.Run("ssd rows have no coincidence measurement", func(t *testing.T) {
		t.Parallel()
		set, err := Reconstruct(makeMixedBatch(), cal, geo)
		require.NoError(t, err)

		for i := 8; i < 14; i++ {
			assert.Zero(t, set.XBack[i], "x_back[%d]", i)
			assert.Zero(t, set.XCoin[i], "x_coin[%d]", i)
			assert.Zero(t, set.TofStopCoin[i], "tof_stop_coin[%d]", i)
		}
		for i := 0; i < 8; i++ {
			assert.False(t, math.IsNaN(set.TofStopCoin[i]), "tof_stop_coin[%d]", i)
		}
	})

	t.Run("ssd back y comes from the struck element", func(t *testing.T) {
		t.Parallel()
		set, err := Reconstruct(makeMixedBatch(), cal, geo)
		require.NoError(t, err)

		assert.Equal(t, cal.SSD[3].YBack, set.YBack[8])
		assert.Equal(t, cal.SSD[7].YBack, set.YBack[9])
		assert.Equal(t, int64(StopTypeSSDFirst)+3, set.EventTypeCode[8])
		assert.Equal(t, int64(StopTypeSSDFirst)+7, set.EventTypeCode[9])
	})

	t.Run("annotated frames align with the instrument velocity", func(t *testing.T) {
		t.Parallel()
		set, err := Reconstruct(makeMixedBatch(), cal, geo)
		require.NoError(t, err)

		require.Len(t, set.VelocitySC, 14)
		require.Len(t, set.VelocityDPSSC, 14)
		require.Len(t, set.VelocityDPSHelio, 14)
		for i := 0; i < 14; i++ {
			inst := r3.Norm(r3.Vec{X: set.Velocity[i][0], Y: set.Velocity[i][1], Z: set.Velocity[i][2]})
			sc := r3.Norm(r3.Vec{X: set.VelocitySC[i][0], Y: set.VelocitySC[i][1], Z: set.VelocitySC[i][2]})
			assert.InDelta(t, inst, sc, 1e-6, "row %d", i)
		}
	})

	t.Run("reconstruction is bit-identical across runs", func(t *testing.T) {
		t.Parallel()
		a, err := Reconstruct(makeMixedBatch(), cal, geo)
		require.NoError(t, err)
		b, err := Reconstruct(makeMixedBatch(), cal, geo)
		require.NoError(t, err)

		assertSameFloats(t, a.XFront, b.XFront)
		assertSameFloats(t, a.YFront, b.YFront)
		assertSameFloats(t, a.PathLength, b.PathLength)
		assertSameFloats(t, a.TofCorrected, b.TofCorrected)
		assertSameFloats(t, a.VelocityMagnitude, b.VelocityMagnitude)
		assertSameFloats(t, a.Azimuth, b.Azimuth)
		assert.Equal(t, a.Species, b.Species)
	})

	t.Run("structural errors abort the batch", func(t *testing.T) {
		t.Parallel()
		batch := makeMixedBatch()
		batch.EnergyPH = batch.EnergyPH[:10]

		_, err := Reconstruct(batch, cal, geo)
		var lenErr *ErrFieldLength
		require.ErrorAs(t, err, &lenErr)
		assert.Equal(t, "energy_ph", lenErr.Field)
	})

	t.Run("coverage gaps abort the batch", func(t *testing.T) {
		t.Parallel()
		narrow := NewSpinGeometry(Configuration{CoverageStart: 0, CoverageEnd: 0.5})

		_, err := Reconstruct(makeMixedBatch(), cal, narrow)
		var covErr *ErrCoverage
		require.ErrorAs(t, err, &covErr)
	})

	t.Run("empty batch produces an empty set", func(t *testing.T) {
		t.Parallel()
		set, err := Reconstruct(makeBatch(0), cal, geo)
		require.NoError(t, err)
		assert.Equal(t, 0, set.Len())
		require.NoError(t, set.validate())
	})

	t.Run("batch of only fill rows produces an empty set", func(t *testing.T) {
		t.Parallel()
		batch := makeBatch(3)
		for i := range batch.StartType {
			batch.StartType[i] = StartTypeFill
		}
		set, err := Reconstruct(batch, cal, geo)
		require.NoError(t, err)
		assert.Equal(t, 0, set.Len())
	})
}

// assertSameFloats compares element-wise at the bit level so NaN sentinels
// count as equal.
func assertSameFloats(t *testing.T, a, b []float64) {
	t.Helper()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, math.Float64bits(a[i]), math.Float64bits(b[i]), "index %d", i)
	}
}

func TestDirectEventSetValidate(t *testing.T) {
	t.Parallel()
	cal := DefaultCalibration()

	set, err := Reconstruct(makeMixedBatch(), cal, testGeometry())
	require.NoError(t, err)

	set.Azimuth = set.Azimuth[:5]
	verr := set.validate()
	var lenErr *ErrFieldLength
	require.ErrorAs(t, verr, &lenErr)
	assert.Equal(t, "azimuth", lenErr.Field)
}

func TestWorkerPipeline(t *testing.T) {
	t.Parallel()
	cal := DefaultCalibration()
	geo := testGeometry()

	t.Run("workers drain all batches", func(t *testing.T) {
		t.Parallel()
		batches := []*RawEventBatch{makeMixedBatch(), makeMixedBatch(), makeMixedBatch()}
		jobs := make(chan WorkerData, len(batches))
		results := make(chan WorkerResult, len(batches))

		for w := 1; w <= 2; w++ {
			go Worker(w, cal, geo, jobs, results)
		}
		go SendBatchesToWorkers(batches, jobs, len(batches))

		total := 0
		for i := 0; i < len(batches); i++ {
			result := <-results
			require.NoError(t, result.Err)
			total += result.Set.Len()
		}
		assert.Equal(t, 42, total)
	})

	t.Run("maxBatches caps the feed", func(t *testing.T) {
		t.Parallel()
		batches := []*RawEventBatch{makeMixedBatch(), makeMixedBatch(), makeMixedBatch()}
		jobs := make(chan WorkerData, len(batches))

		go SendBatchesToWorkers(batches, jobs, 2)

		count := 0
		for range jobs {
			count++
		}
		assert.Equal(t, 2, count)
	})

	t.Run("aborted batches report their error", func(t *testing.T) {
		t.Parallel()
		bad := makeMixedBatch()
		bad.StopType = bad.StopType[:4]
		jobs := make(chan WorkerData, 1)
		results := make(chan WorkerResult, 1)

		go Worker(1, cal, geo, jobs, results)
		jobs <- WorkerData{BatchID: 7, Batch: bad}
		close(jobs)

		result := <-results
		assert.Equal(t, 7, result.BatchID)
		require.Error(t, result.Err)
		assert.Nil(t, result.Set)
	})
}
