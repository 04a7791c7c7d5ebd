package recon

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Writer serializes assembled DirectEvent tables to an HDF5 archive. The
// engine itself never touches it; the drain loop hands finished sets over.
type Writer struct {
	File          *hdf5.File
	Filename      string
	DEGroup       *hdf5.Group
	EventTable    *hdf5.Dataset
	VariableTable *hdf5.Dataset
	VelocityInst  *hdf5.Dataset
	VelocitySC    *hdf5.Dataset
	VelocityDPS   *hdf5.Dataset
	VelocityHelio *hdf5.Dataset
	EvtCounter    int
}

func NewWriter(filename string) (*Writer, error) {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	w := &Writer{Filename: filename}
	var err error
	if w.File, err = openFile(filename); err != nil {
		return nil, fmt.Errorf("error creating file %q: %w", filename, err)
	}
	if w.DEGroup, err = createGroup(w.File, "DirectEvents"); err != nil {
		return nil, fmt.Errorf("error creating group: %w", err)
	}
	if w.EventTable, err = createTable(w.DEGroup, "events", DirectEventHDF5{}); err != nil {
		return nil, err
	}
	if w.VariableTable, err = createTable(w.DEGroup, "variables", VariableAttrsHDF5{}); err != nil {
		return nil, err
	}
	if w.VelocityInst, err = createVectorArray(w.DEGroup, "direct_event_velocity"); err != nil {
		return nil, err
	}
	if w.VelocitySC, err = createVectorArray(w.DEGroup, "velocity_sc"); err != nil {
		return nil, err
	}
	if w.VelocityDPS, err = createVectorArray(w.DEGroup, "velocity_dps_sc"); err != nil {
		return nil, err
	}
	if w.VelocityHelio, err = createVectorArray(w.DEGroup, "velocity_dps_helio"); err != nil {
		return nil, err
	}

	if err = w.writeVariableAttrs(); err != nil {
		return nil, err
	}
	return w, nil
}

// writeVariableAttrs records shape and fill value for every output variable
// so downstream readers can restore sentinels without guessing.
func (w *Writer) writeVariableAttrs() error {
	names := maps.Keys(outputVariables)
	slices.Sort(names)
	rows := make([]VariableAttrsHDF5, len(names))
	for i, name := range names {
		attrs := outputVariables[name]
		rows[i] = VariableAttrsHDF5{
			name:  convertToHdf5Name(attrs.Name),
			shape: int32(attrs.Shape),
			fill:  attrs.Fill,
		}
	}
	return writeArrayToTable(w.VariableTable, &rows)
}

// WriteSet appends one assembled set to the archive, preserving row order.
func (w *Writer) WriteSet(set *DirectEventSet) error {
	if err := set.validate(); err != nil {
		return err
	}

	rows := make([]DirectEventHDF5, set.Len())
	for i := range rows {
		rows[i] = DirectEventHDF5{
			epoch:               set.Epoch[i],
			x_front:             set.XFront[i],
			y_front:             set.YFront[i],
			x_back:              set.XBack[i],
			y_back:              set.YBack[i],
			x_coin:              set.XCoin[i],
			front_back_distance: set.FrontBackDistance[i],
			path_length:         set.PathLength[i],
			tof_start_stop:      set.TofStartStop[i],
			tof_stop_coin:       set.TofStopCoin[i],
			tof_corrected:       set.TofCorrected[i],
			velocity_magnitude:  set.VelocityMagnitude[i],
			energy:              set.Energy[i],
			tof_energy:          set.TofEnergy[i],
			azimuth:             set.Azimuth[i],
			elevation:           set.Elevation[i],
			coincidence_type:    set.CoincidenceType[i],
			start_type:          set.StartTypeCode[i],
			event_type:          set.EventTypeCode[i],
			de_event_met:        set.EventMET[i],
			event_times:         set.EventTimes[i],
			species:             convertToHdf5String(set.Species[i]),
		}
	}
	if err := writeArrayToTable(w.EventTable, &rows); err != nil {
		return fmt.Errorf("error writing event table: %w", err)
	}
	if err := writeVectorArray(w.VelocityInst, set.Velocity); err != nil {
		return fmt.Errorf("error writing instrument velocity: %w", err)
	}
	if err := writeVectorArray(w.VelocitySC, set.VelocitySC); err != nil {
		return fmt.Errorf("error writing spacecraft velocity: %w", err)
	}
	if err := writeVectorArray(w.VelocityDPS, set.VelocityDPSSC); err != nil {
		return fmt.Errorf("error writing pointing velocity: %w", err)
	}
	if err := writeVectorArray(w.VelocityHelio, set.VelocityDPSHelio); err != nil {
		return fmt.Errorf("error writing heliospheric velocity: %w", err)
	}

	w.EvtCounter += set.Len()
	return nil
}

func (w *Writer) Close() error {
	var errs []error

	if err := w.EventTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing event table: %w", err))
	}
	if err := w.VariableTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing variable table: %w", err))
	}
	if err := w.VelocityInst.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing instrument velocity: %w", err))
	}
	if err := w.VelocitySC.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing spacecraft velocity: %w", err))
	}
	if err := w.VelocityDPS.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing pointing velocity: %w", err))
	}
	if err := w.VelocityHelio.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing heliospheric velocity: %w", err))
	}
	if err := w.DEGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
