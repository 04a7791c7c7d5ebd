package recon

// MetToEpochNs converts mission elapsed time (seconds) to nanoseconds since
// the reference epoch for the output epoch column. The fixed TT offset is
// good to the leap-second error; exact conversion belongs to the ephemeris
// service.
func MetToEpochNs(met float64) int64 {
	return int64(met * 1e9)
}
