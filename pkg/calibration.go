package recon

import (
	"fmt"
	"math"
)

// LinearCal is a slope/offset pair applied to a raw TDC code.
type LinearCal struct {
	Slope  float64
	Offset float64
}

func (l LinearCal) Apply(code float64) float64 {
	return l.Slope*code + l.Offset
}

// SSDElementCal holds the per-element constants for the eight solid-state
// detectors: back-plane y position (hundredths of mm), TOF offsets per start
// side (tenths of ns) and the energy conversion pair.
type SSDElementCal struct {
	YBack          float64 `db:"YBack"`
	TofOffsetLeft  float64 `db:"TofOffsetLeft"`
	TofOffsetRight float64 `db:"TofOffsetRight"`
	EnergyGain     float64 `db:"EnergyGain"`
	EnergyOffset   float64 `db:"EnergyOffset"`
}

// Calibration is the full constant set for one run. It is loaded once
// (database or defaults) and passed read-only through every stage; nothing
// in the engine mutates it after load.
type Calibration struct {
	// Front anode position
	XFTSC    float64 // TDC code to hundredths of mm
	XFTLTOFF float64 // left-side offset
	XFTRTOFF float64 // right-side offset
	XFTTOF   float64 // front-x to TOF correction

	// Front-y geometry (mm)
	SlitZ           float64
	DSlitFoil       float64
	YfEstimateLeft  float64
	YfEstimateRight float64
	NElements       float64
	TrimDistance    float64

	// Stop anode TDC normalization per corner
	SpNNorm LinearCal
	SpSNorm LinearCal
	SpENorm LinearCal
	SpWNorm LinearCal

	// Pulse-height TOF and back positions
	TOFSC    float64
	TOFTPOFF float64
	TOFBTOFF float64
	XBkTp    LinearCal
	YBkTp    LinearCal
	XBkBt    LinearCal
	YBkBt    LinearCal

	// Coincidence anode
	CoinNNorm LinearCal
	CoinSNorm LinearCal
	ETOFSC    float64
	ETOFTPOFF float64
	ETOFBTOFF float64
	XCoinTp   LinearCal
	XCoinBt   LinearCal

	// SSD branch
	TOFSSDSC     float64
	TOFSSDTOTOFF float64
	SSD          [NumSSDElements]SSDElementCal

	// Species discriminant. The band bounds are on the stored ctof scale
	// (tenths of ns).
	DMinPH         float64 // mm, normalization distance for the PH branch
	DMinSSD        float64
	CTOFSpeciesMin float64
	CTOFSpeciesMax float64

	// Pulse-height energy conversion
	EnergyGainTop    float64
	EnergyGainBottom float64
	EnergyPosScale   float64 // back-position flat-field correction per mm
}

// DefaultCalibration returns the bench calibration used when running
// without a database connection. Values mirror the flight instrument's
// ground calibration campaign.
func DefaultCalibration() *Calibration {
	cal := &Calibration{
		XFTSC:    0.1725,
		XFTLTOFF: 49.3,
		XFTRTOFF: 48.25,
		XFTTOF:   0.001287,

		SlitZ:           44.89,
		DSlitFoil:       3.39,
		YfEstimateLeft:  40.0,
		YfEstimateRight: -40.0,
		NElements:       256,
		TrimDistance:    81.92,

		SpNNorm: LinearCal{Slope: 1.0, Offset: 0.0},
		SpSNorm: LinearCal{Slope: 1.0, Offset: -2.0},
		SpENorm: LinearCal{Slope: 1.0, Offset: 1.0},
		SpWNorm: LinearCal{Slope: 1.0, Offset: -1.0},

		TOFSC:    0.005,
		TOFTPOFF: 26.91,
		TOFBTOFF: 26.36,
		XBkTp:    LinearCal{Slope: 1.6, Offset: -3276.8},
		YBkTp:    LinearCal{Slope: 1.6, Offset: -3276.8},
		XBkBt:    LinearCal{Slope: 1.6, Offset: -3276.8},
		YBkBt:    LinearCal{Slope: 1.6, Offset: -3276.8},

		CoinNNorm: LinearCal{Slope: 1.0, Offset: 0.0},
		CoinSNorm: LinearCal{Slope: 1.0, Offset: -1.5},
		ETOFSC:    0.005,
		ETOFTPOFF: 26.5,
		ETOFBTOFF: 26.0,
		XCoinTp:   LinearCal{Slope: 0.00375, Offset: 0.0},
		XCoinBt:   LinearCal{Slope: 0.00375, Offset: 0.0},

		TOFSSDSC:     0.196484,
		TOFSSDTOTOFF: 17.3,

		DMinPH:         44.89,
		DMinSSD:        46.2,
		CTOFSpeciesMin: 1440,
		CTOFSpeciesMax: 4800,

		EnergyGainTop:    0.1823,
		EnergyGainBottom: 0.1791,
		EnergyPosScale:   0.00055,
	}

	ssdYBack := [NumSSDElements]float64{-3584, -2560, -1536, -512, 512, 1536, 2560, 3584}
	ssdTofLeft := [NumSSDElements]float64{-3.3, -3.6, -3.9, -4.2, -4.5, -4.8, -5.1, -5.4}
	ssdTofRight := [NumSSDElements]float64{-3.2, -3.4, -3.6, -3.8, -4.0, -4.4, -4.8, -6.0}
	for i := 0; i < NumSSDElements; i++ {
		cal.SSD[i] = SSDElementCal{
			YBack:          ssdYBack[i],
			TofOffsetLeft:  ssdTofLeft[i],
			TofOffsetRight: ssdTofRight[i],
			EnergyGain:     0.0202,
			EnergyOffset:   1.3,
		}
	}
	return cal
}

// setParam applies a scalar calibration row by mnemonic. Linear pairs use
// the _SC/_OFF suffix convention from the calibration tables.
func (c *Calibration) setParam(mnemonic string, value float64) error {
	switch mnemonic {
	case "XFTSC":
		c.XFTSC = value
	case "XFTLTOFF":
		c.XFTLTOFF = value
	case "XFTRTOFF":
		c.XFTRTOFF = value
	case "XFTTOF":
		c.XFTTOF = value
	case "SLITZ":
		c.SlitZ = value
	case "DSLITFOIL":
		c.DSlitFoil = value
	case "YFLTOFF":
		c.YfEstimateLeft = value
	case "YFRTOFF":
		c.YfEstimateRight = value
	case "NELEMENTS":
		c.NElements = value
	case "TRIMDIST":
		c.TrimDistance = value
	case "SPN_SC":
		c.SpNNorm.Slope = value
	case "SPN_OFF":
		c.SpNNorm.Offset = value
	case "SPS_SC":
		c.SpSNorm.Slope = value
	case "SPS_OFF":
		c.SpSNorm.Offset = value
	case "SPE_SC":
		c.SpENorm.Slope = value
	case "SPE_OFF":
		c.SpENorm.Offset = value
	case "SPW_SC":
		c.SpWNorm.Slope = value
	case "SPW_OFF":
		c.SpWNorm.Offset = value
	case "TOFSC":
		c.TOFSC = value
	case "TOFTPOFF":
		c.TOFTPOFF = value
	case "TOFBTOFF":
		c.TOFBTOFF = value
	case "XBKTP_SC":
		c.XBkTp.Slope = value
	case "XBKTP_OFF":
		c.XBkTp.Offset = value
	case "YBKTP_SC":
		c.YBkTp.Slope = value
	case "YBKTP_OFF":
		c.YBkTp.Offset = value
	case "XBKBT_SC":
		c.XBkBt.Slope = value
	case "XBKBT_OFF":
		c.XBkBt.Offset = value
	case "YBKBT_SC":
		c.YBkBt.Slope = value
	case "YBKBT_OFF":
		c.YBkBt.Offset = value
	case "COINN_SC":
		c.CoinNNorm.Slope = value
	case "COINN_OFF":
		c.CoinNNorm.Offset = value
	case "COINS_SC":
		c.CoinSNorm.Slope = value
	case "COINS_OFF":
		c.CoinSNorm.Offset = value
	case "ETOFSC":
		c.ETOFSC = value
	case "ETOFTPOFF":
		c.ETOFTPOFF = value
	case "ETOFBTOFF":
		c.ETOFBTOFF = value
	case "XCOINTP_SC":
		c.XCoinTp.Slope = value
	case "XCOINTP_OFF":
		c.XCoinTp.Offset = value
	case "XCOINBT_SC":
		c.XCoinBt.Slope = value
	case "XCOINBT_OFF":
		c.XCoinBt.Offset = value
	case "TOFSSDSC":
		c.TOFSSDSC = value
	case "TOFSSDTOTOFF":
		c.TOFSSDTOTOFF = value
	case "DMINPH":
		c.DMinPH = value
	case "DMINSSD":
		c.DMinSSD = value
	case "CTOFSPMIN":
		c.CTOFSpeciesMin = value
	case "CTOFSPMAX":
		c.CTOFSpeciesMax = value
	case "EGAINTP":
		c.EnergyGainTop = value
	case "EGAINBT":
		c.EnergyGainBottom = value
	case "EPOSSC":
		c.EnergyPosScale = value
	default:
		return fmt.Errorf("unknown mnemonic %q", mnemonic)
	}
	return nil
}

// VariableAttrs describes one output variable for the archival writer:
// element count per event, fill value and storage type.
type VariableAttrs struct {
	Name  string
	Shape int
	Fill  float64
	DType string
}

var outputVariables = map[string]VariableAttrs{
	"x_front":               {Name: "x_front", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"y_front":               {Name: "y_front", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"x_back":                {Name: "x_back", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"y_back":                {Name: "y_back", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"x_coin":                {Name: "x_coin", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"front_back_distance":   {Name: "front_back_distance", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"path_length":           {Name: "path_length", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"tof_start_stop":        {Name: "tof_start_stop", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"tof_stop_coin":         {Name: "tof_stop_coin", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"tof_corrected":         {Name: "tof_corrected", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"velocity_magnitude":    {Name: "velocity_magnitude", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"direct_event_velocity": {Name: "direct_event_velocity", Shape: 3, Fill: math.NaN(), DType: "float64"},
	"velocity_sc":           {Name: "velocity_sc", Shape: 3, Fill: math.NaN(), DType: "float64"},
	"velocity_dps_sc":       {Name: "velocity_dps_sc", Shape: 3, Fill: math.NaN(), DType: "float64"},
	"velocity_dps_helio":    {Name: "velocity_dps_helio", Shape: 3, Fill: math.NaN(), DType: "float64"},
	"energy":                {Name: "energy", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"tof_energy":            {Name: "tof_energy", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"species":               {Name: "species", Shape: 1, Fill: 0, DType: "string"},
	"azimuth":               {Name: "azimuth", Shape: 1, Fill: math.NaN(), DType: "float64"},
	"elevation":             {Name: "elevation", Shape: 1, Fill: math.NaN(), DType: "float64"},
}

// VariableAttributes looks up the writer metadata for an output variable.
// Unknown names are fatal to the run.
func VariableAttributes(name string) (VariableAttrs, error) {
	attrs, ok := outputVariables[name]
	if !ok {
		return VariableAttrs{}, fmt.Errorf("unknown output variable %q", name)
	}
	return attrs, nil
}
