package recon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearCalApply(t *testing.T) {
	t.Parallel()
	cal := LinearCal{Slope: 1.6, Offset: -3276.8}
	assert.InDelta(t, -3276.8, cal.Apply(0), 1e-12)
	assert.InDelta(t, 1.6*2048-3276.8, cal.Apply(2048), 1e-9)
}

func TestDefaultCalibration(t *testing.T) {
	t.Parallel()
	cal := DefaultCalibration()

	t.Run("species band is ordered", func(t *testing.T) {
		t.Parallel()
		assert.Less(t, cal.CTOFSpeciesMin, cal.CTOFSpeciesMax)
	})

	t.Run("every ssd element is populated", func(t *testing.T) {
		t.Parallel()
		for i := 0; i < NumSSDElements; i++ {
			assert.NotZero(t, cal.SSD[i].YBack, "element %d", i)
			assert.Negative(t, cal.SSD[i].TofOffsetLeft, "element %d", i)
			assert.Negative(t, cal.SSD[i].TofOffsetRight, "element %d", i)
			assert.Positive(t, cal.SSD[i].EnergyGain, "element %d", i)
		}
		// Back positions sweep bottom to top.
		for i := 1; i < NumSSDElements; i++ {
			assert.Less(t, cal.SSD[i-1].YBack, cal.SSD[i].YBack)
		}
	})

	t.Run("reference distances match the slit geometry", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, cal.SlitZ, cal.DMinPH, 1e-12)
		assert.Greater(t, cal.DMinSSD, cal.DMinPH)
	})
}

func TestSetParam(t *testing.T) {
	t.Parallel()

	t.Run("scalar mnemonics land on their field", func(t *testing.T) {
		t.Parallel()
		cal := DefaultCalibration()
		require.NoError(t, cal.setParam("XFTSC", 0.2))
		require.NoError(t, cal.setParam("TOFBTOFF", 30.1))
		require.NoError(t, cal.setParam("CTOFSPMIN", 12.0))
		assert.Equal(t, 0.2, cal.XFTSC)
		assert.Equal(t, 30.1, cal.TOFBTOFF)
		assert.Equal(t, 12.0, cal.CTOFSpeciesMin)
	})

	t.Run("linear pairs use the suffix convention", func(t *testing.T) {
		t.Parallel()
		cal := DefaultCalibration()
		require.NoError(t, cal.setParam("XBKTP_SC", 2.5))
		require.NoError(t, cal.setParam("XBKTP_OFF", -100))
		assert.Equal(t, LinearCal{Slope: 2.5, Offset: -100}, cal.XBkTp)
	})

	t.Run("unknown mnemonics are rejected", func(t *testing.T) {
		t.Parallel()
		cal := DefaultCalibration()
		err := cal.setParam("NOSUCHPARAM", 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NOSUCHPARAM")
	})
}

func TestVariableAttributes(t *testing.T) {
	t.Parallel()

	t.Run("scalar and vector variables", func(t *testing.T) {
		t.Parallel()
		attrs, err := VariableAttributes("x_front")
		require.NoError(t, err)
		assert.Equal(t, 1, attrs.Shape)
		assert.True(t, math.IsNaN(attrs.Fill))

		attrs, err = VariableAttributes("direct_event_velocity")
		require.NoError(t, err)
		assert.Equal(t, 3, attrs.Shape)
	})

	t.Run("species uses a non-NaN fill", func(t *testing.T) {
		t.Parallel()
		attrs, err := VariableAttributes("species")
		require.NoError(t, err)
		assert.Equal(t, "string", attrs.DType)
		assert.Equal(t, 0.0, attrs.Fill)
	})

	t.Run("unknown variables fail", func(t *testing.T) {
		t.Parallel()
		_, err := VariableAttributes("no_such_column")
		assert.Error(t, err)
	})
}
