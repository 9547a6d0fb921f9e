package domain

// Record represents one housing observation after preparation.
// LogPrice and LogArea are natural logs of the raw fields; GroupCode
// is the stable integer code assigned to the record's group label.
type Record struct {
	RowID      string  `json:"rowId"`
	Price      float64 `json:"price"`
	Area       float64 `json:"area"`
	GroupLabel string  `json:"groupLabel"`
	LogPrice   float64 `json:"logPrice"`
	LogArea    float64 `json:"logArea"`
	GroupCode  int     `json:"groupCode"`
}

// RecordInput represents a raw observation before preparation. Price
// and area are not range-checked here: the preparer's configured
// policy decides whether non-positive values are dropped and counted
// or rejected, and it must see them to do either.
type RecordInput struct {
	RowID      string  `json:"rowId,omitempty"`
	Price      float64 `json:"price"`
	Area       float64 `json:"area"`
	GroupLabel string  `json:"groupLabel" validate:"required"`
}
