package domain

import (
	"time"

	"github.com/google/uuid"
)

// Dataset represents a prepared collection of records together with
// the group code mapping. It is created once at load time and treated
// as immutable afterwards; every model builder operates on a read-only
// view of it.
type Dataset struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Records   []Record  `json:"records,omitempty"`
	Groups    []string  `json:"groups"` // index = group code
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// DroppedCount is the number of raw records excluded during
	// preparation (non-positive price or area). Reported, never hidden.
	DroppedCount int `json:"droppedCount"`

	// Aggregated fields (populated on read)
	RecordCount int64 `json:"recordCount,omitempty"`
	FitCount    int64 `json:"fitCount,omitempty"`
}

// DatasetInput represents input for registering a dataset
type DatasetInput struct {
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description,omitempty"`
	Records     []RecordInput `json:"records" validate:"required,min=1,dive"`
}

// DatasetFilter represents filter options for querying datasets
type DatasetFilter struct {
	Name *string
}

// DatasetList represents a paginated list of datasets
type DatasetList struct {
	Datasets   []Dataset `json:"datasets"`
	TotalCount int64     `json:"totalCount"`
	HasMore    bool      `json:"hasMore"`
}

// GroupCount returns the number of distinct groups G.
func (d *Dataset) GroupCount() int {
	return len(d.Groups)
}

// GroupCode returns the integer code for a group label.
func (d *Dataset) GroupCode(label string) (int, bool) {
	for i, g := range d.Groups {
		if g == label {
			return i, true
		}
	}
	return 0, false
}

// GroupRecords returns the records belonging to the given group code,
// preserving input order.
func (d *Dataset) GroupRecords(code int) []Record {
	var out []Record
	for _, r := range d.Records {
		if r.GroupCode == code {
			out = append(out, r)
		}
	}
	return out
}

// GroupSizes returns the number of records per group code.
func (d *Dataset) GroupSizes() []int {
	sizes := make([]int, len(d.Groups))
	for _, r := range d.Records {
		if r.GroupCode >= 0 && r.GroupCode < len(sizes) {
			sizes[r.GroupCode]++
		}
	}
	return sizes
}
