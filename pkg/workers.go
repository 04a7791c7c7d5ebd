package recon

import "fmt"

// WorkerData is one reconstruction job: a raw batch and its sequence number.
type WorkerData struct {
	BatchID int
	Batch   *RawEventBatch
}

// WorkerResult carries the reconstructed set, or the error that aborted the
// batch, back to the drain loop.
type WorkerResult struct {
	BatchID int
	Set     *DirectEventSet
	Err     error
}

// Worker reconstructs batches from the jobs channel until it closes. Batches
// are independent, so any number of workers may run concurrently; calibration
// and geometry are shared read-only.
func Worker(id int, cal *Calibration, geo Geometry, jobs <-chan WorkerData, results chan<- WorkerResult) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error(fmt.Sprintf("Worker %d recovered from panic: %v", id, rec))
			results <- WorkerResult{Err: fmt.Errorf("worker %d panic: %v", id, rec)}
		}
	}()

	for job := range jobs {
		set, err := Reconstruct(job.Batch, cal, geo)
		results <- WorkerResult{BatchID: job.BatchID, Set: set, Err: err}
	}
}

// SendBatchesToWorkers feeds up to maxBatches jobs and closes the channel.
func SendBatchesToWorkers(batches []*RawEventBatch, jobs chan<- WorkerData, maxBatches int) {
	for i, batch := range batches {
		if i >= maxBatches {
			break
		}
		jobs <- WorkerData{BatchID: i, Batch: batch}
	}
	close(jobs)
}
