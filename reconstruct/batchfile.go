package main

import (
	"encoding/json"
	"fmt"
	"os"

	recon "github.com/ena-imaging/recon_go/pkg"
)

// LoadBatches reads the decommutated raw batches from a JSON file: either a
// single batch object or an array of batch objects, one per spin block. The
// upstream decommutation stage produces this layout.
func LoadBatches(filename string) ([]*recon.RawEventBatch, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening file %q: %w", filename, err)
	}

	var batches []*recon.RawEventBatch
	if err := json.Unmarshal(data, &batches); err != nil {
		var single recon.RawEventBatch
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("error parsing batch file %q: %w", filename, err)
		}
		batches = []*recon.RawEventBatch{&single}
	}

	for i, batch := range batches {
		batch.DeriveEpoch()
		if err := batch.Validate(); err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
	}
	return batches, nil
}
