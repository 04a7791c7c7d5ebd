package recon

import (
	hdf5 "github.com/jmbenlloch/go-hdf5"
)

const STRLEN = 10

// DirectEventHDF5 is one row of the archived event table. Field names become
// the HDF5 compound member names.
type DirectEventHDF5 struct {
	epoch               int64
	x_front             float64
	y_front             float64
	x_back              float64
	y_back              float64
	x_coin              float64
	front_back_distance float64
	path_length         float64
	tof_start_stop      float64
	tof_stop_coin       float64
	tof_corrected       float64
	velocity_magnitude  float64
	energy              float64
	tof_energy          float64
	azimuth             float64
	elevation           float64
	coincidence_type    int64
	start_type          int64
	event_type          int64
	de_event_met        float64
	event_times         float64
	species             [STRLEN]byte
}

// VariableAttrsHDF5 is one row of the variable metadata table.
type VariableAttrsHDF5 struct {
	name  [STRLEN * 2]byte
	shape int32
	fill  float64
}

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func convertToHdf5Name(s string) [STRLEN * 2]byte {
	var byteArray [STRLEN * 2]byte
	copy(byteArray[:], s)
	return byteArray
}

func openFile(fname string) (*hdf5.File, error) {
	return hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	return file.CreateGroup(groupName)
}

// createVectorArray creates an append-only [unlimited x 3] float64 dataset
// for one velocity column.
func createVectorArray(group *hdf5.Group, name string) (*hdf5.Dataset, error) {
	dims := []uint{0, 3}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims), 3}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, err
	}

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, err
	}
	plist.SetChunk([]uint{1024, 3})
	plist.SetDeflate(4)

	return group.CreateDatasetWith(name, hdf5.T_NATIVE_DOUBLE, fileSpace, plist)
}

func createTable(group *hdf5.Group, name string, datatype interface{}) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	plist.SetChunk([]uint{32768})
	plist.SetDeflate(4)

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

// writeArrayToTable appends the rows to an extensible 1-D table.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T) error {
	length := uint(len(*data))
	dataspace, err := hdf5.CreateSimpleDataspace([]uint{length}, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	dimsGot, _, err := dataset.Space().SimpleExtentDims()
	if err != nil {
		return err
	}
	rowsInFile := dimsGot[0]
	if err := dataset.Resize([]uint{rowsInFile + length}); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	filespace.SelectHyperslab([]uint{rowsInFile}, nil, []uint{length}, nil)
	return dataset.WriteSubset(data, dataspace, filespace)
}

// writeVectorArray appends n rows of 3-vectors to an [unlimited x 3] array.
func writeVectorArray(dataset *hdf5.Dataset, rows [][3]float64) error {
	n := uint(len(rows))
	flat := make([]float64, 0, 3*len(rows))
	for _, row := range rows {
		flat = append(flat, row[0], row[1], row[2])
	}

	dimsGot, _, err := dataset.Space().SimpleExtentDims()
	if err != nil {
		return err
	}
	rowsInFile := dimsGot[0]
	if err := dataset.Resize([]uint{rowsInFile + n, 3}); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()
	filespace.SelectHyperslab([]uint{rowsInFile, 0}, nil, []uint{n, 3}, nil)

	dataspace, err := hdf5.CreateSimpleDataspace([]uint{n, 3}, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	return dataset.WriteSubset(&flat, dataspace, filespace)
}
