package recon

// FilterValidStart drops events whose start type carries the "no detection"
// sentinel. The surviving batch keeps the original detection order.
func FilterValidStart(batch *RawEventBatch) *RawEventBatch {
	indices := make([]int, 0, batch.Len())
	for i, st := range batch.StartType {
		if st != StartTypeFill {
			indices = append(indices, i)
		}
	}
	return batch.Select(indices)
}

// ClassifyStopTypes partitions the batch by stop type: pulse-height events
// (Top/Bottom anode stop) and SSD events (element codes). Events matching
// neither keep their pre-filled sentinels through every later stage; that is
// not an error.
func ClassifyStopTypes(stopType []int64) (phIndices, ssdIndices []int) {
	for i, code := range stopType {
		switch {
		case IsPulseHeight(code):
			phIndices = append(phIndices, i)
		case IsSSD(code):
			ssdIndices = append(ssdIndices, i)
		}
	}
	return phIndices, ssdIndices
}
