// Package export requests vector exports from the remote renderer in bounded
// batches.
package export

import "git.home.luguber.info/inful/figicons/internal/naming"

// BatchSize is the largest number of ids the renderer accepts per request.
const BatchSize = 20

// Batch is one export request worth of node ids.
type Batch struct {
	Index int
	IDs   []string
}

// Partition splits icons into consecutive batches of at most size ids, in
// input order. Batch k holds positions [k*size, k*size+size).
func Partition(icons []naming.Icon, size int) []Batch {
	if size < 1 {
		size = BatchSize
	}
	batches := make([]Batch, 0, (len(icons)+size-1)/size)
	for start := 0; start < len(icons); start += size {
		end := min(start+size, len(icons))
		ids := make([]string, 0, end-start)
		for _, icon := range icons[start:end] {
			ids = append(ids, icon.ID)
		}
		batches = append(batches, Batch{Index: len(batches), IDs: ids})
	}
	return batches
}
