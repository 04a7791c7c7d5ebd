package recon

import "math"

// Telemetry codes, with the integer values used on the wire.

type StartType int64

const (
	StartTypeLeft  StartType = 1
	StartTypeRight StartType = 2
)

// StartTypeFill marks events where the start anode saw nothing. They are
// dropped before reconstruction.
const StartTypeFill int64 = math.MinInt64

func (s StartType) String() string {
	switch s {
	case StartTypeLeft:
		return "Left"
	case StartTypeRight:
		return "Right"
	default:
		return "Unknown"
	}
}

type StopType int64

const (
	StopTypeTop    StopType = 1
	StopTypeBottom StopType = 2
	// SSD stops encode the struck element: code 8+n for element n (0-7).
	StopTypeSSDFirst StopType = 8
	StopTypeSSDLast  StopType = 15
)

const NumSSDElements = 8

func IsPulseHeight(code int64) bool {
	return code == int64(StopTypeTop) || code == int64(StopTypeBottom)
}

func IsSSD(code int64) bool {
	return code >= int64(StopTypeSSDFirst) && code <= int64(StopTypeSSDLast)
}

// SSDElement returns the element index (0-7) encoded in an SSD stop code.
func SSDElement(code int64) int {
	return int(code - int64(StopTypeSSDFirst))
}

type CoinType int64

const (
	CoinTypeTop    CoinType = 1
	CoinTypeBottom CoinType = 2
)

const (
	SpeciesUnknown  = "UNKNOWN"
	SpeciesHydrogen = "H"
)

// RawEventBatch is the labeled column set handed over by upstream
// decommutation. Column order is physical detection order and is preserved
// through every stage.
type RawEventBatch struct {
	Epoch           []int64   `json:"epoch"`
	EventTimes      []float64 `json:"event_times"`
	EventMET        []float64 `json:"de_event_met"`
	StartType       []int64   `json:"start_type"`
	StopType        []int64   `json:"stop_type"`
	CoinType        []int64   `json:"coin_type"`
	StartPosTDC     []float64 `json:"start_pos_tdc"`
	StopNorthTDC    []float64 `json:"stop_north_tdc"`
	StopSouthTDC    []float64 `json:"stop_south_tdc"`
	StopEastTDC     []float64 `json:"stop_east_tdc"`
	StopWestTDC     []float64 `json:"stop_west_tdc"`
	CoinNorthTDC    []float64 `json:"coin_north_tdc"`
	CoinSouthTDC    []float64 `json:"coin_south_tdc"`
	CoinDiscreteTDC []float64 `json:"coin_discrete_tdc"`
	EnergyPH        []float64 `json:"energy_ph"`
}

func (b *RawEventBatch) Len() int {
	return len(b.Epoch)
}

// Validate checks that every column matches the batch length. A mismatch is
// a structural error and aborts the batch.
func (b *RawEventBatch) Validate() error {
	n := b.Len()
	columns := []struct {
		name string
		got  int
	}{
		{"event_times", len(b.EventTimes)},
		{"de_event_met", len(b.EventMET)},
		{"start_type", len(b.StartType)},
		{"stop_type", len(b.StopType)},
		{"coin_type", len(b.CoinType)},
		{"start_pos_tdc", len(b.StartPosTDC)},
		{"stop_north_tdc", len(b.StopNorthTDC)},
		{"stop_south_tdc", len(b.StopSouthTDC)},
		{"stop_east_tdc", len(b.StopEastTDC)},
		{"stop_west_tdc", len(b.StopWestTDC)},
		{"coin_north_tdc", len(b.CoinNorthTDC)},
		{"coin_south_tdc", len(b.CoinSouthTDC)},
		{"coin_discrete_tdc", len(b.CoinDiscreteTDC)},
		{"energy_ph", len(b.EnergyPH)},
	}
	for _, c := range columns {
		if c.got != n {
			return &ErrFieldLength{Field: c.name, Want: n, Got: c.got}
		}
	}
	return nil
}

// DeriveEpoch fills an absent epoch column from the event MET values.
// Batches that already carry an epoch column keep it.
func (b *RawEventBatch) DeriveEpoch() {
	if len(b.Epoch) != 0 || len(b.EventMET) == 0 {
		return
	}
	b.Epoch = make([]int64, len(b.EventMET))
	for i, met := range b.EventMET {
		b.Epoch[i] = MetToEpochNs(met)
	}
}

// Select returns a new batch holding the rows at the given indices.
func (b *RawEventBatch) Select(indices []int) *RawEventBatch {
	out := &RawEventBatch{
		Epoch:           make([]int64, len(indices)),
		EventTimes:      make([]float64, len(indices)),
		EventMET:        make([]float64, len(indices)),
		StartType:       make([]int64, len(indices)),
		StopType:        make([]int64, len(indices)),
		CoinType:        make([]int64, len(indices)),
		StartPosTDC:     make([]float64, len(indices)),
		StopNorthTDC:    make([]float64, len(indices)),
		StopSouthTDC:    make([]float64, len(indices)),
		StopEastTDC:     make([]float64, len(indices)),
		StopWestTDC:     make([]float64, len(indices)),
		CoinNorthTDC:    make([]float64, len(indices)),
		CoinSouthTDC:    make([]float64, len(indices)),
		CoinDiscreteTDC: make([]float64, len(indices)),
		EnergyPH:        make([]float64, len(indices)),
	}
	for i, idx := range indices {
		out.Epoch[i] = b.Epoch[idx]
		out.EventTimes[i] = b.EventTimes[idx]
		out.EventMET[i] = b.EventMET[idx]
		out.StartType[i] = b.StartType[idx]
		out.StopType[i] = b.StopType[idx]
		out.CoinType[i] = b.CoinType[idx]
		out.StartPosTDC[i] = b.StartPosTDC[idx]
		out.StopNorthTDC[i] = b.StopNorthTDC[idx]
		out.StopSouthTDC[i] = b.StopSouthTDC[idx]
		out.StopEastTDC[i] = b.StopEastTDC[idx]
		out.StopWestTDC[i] = b.StopWestTDC[idx]
		out.CoinNorthTDC[i] = b.CoinNorthTDC[idx]
		out.CoinSouthTDC[i] = b.CoinSouthTDC[idx]
		out.CoinDiscreteTDC[i] = b.CoinDiscreteTDC[idx]
		out.EnergyPH[i] = b.EnergyPH[idx]
	}
	return out
}

// DirectEventSet is the assembled output table, one row per surviving input
// event. Positions are in hundredths of mm, distances in mm, TOFs in tenths
// of ns, velocities in km/s, energies in keV.
type DirectEventSet struct {
	Epoch             []int64
	XFront            []float64
	YFront            []float64
	XBack             []float64
	YBack             []float64
	XCoin             []float64
	FrontBackDistance []float64
	PathLength        []float64
	TofStartStop      []float64
	TofStopCoin       []float64
	TofCorrected      []float64
	VelocityMagnitude []float64
	Velocity          [][3]float64
	VelocitySC        [][3]float64
	VelocityDPSSC     [][3]float64
	VelocityDPSHelio  [][3]float64
	Energy            []float64
	TofEnergy         []float64
	Species           []string
	Azimuth           []float64
	Elevation         []float64
	CoincidenceType   []int64
	StartTypeCode     []int64
	EventTypeCode     []int64
	EventMET          []float64
	EventTimes        []float64
}

func (s *DirectEventSet) Len() int {
	return len(s.Epoch)
}
