// Package dataprep loads raw housing observations and prepares them for
// model fitting: it validates positivity of price and area, derives the
// log-transformed fields, and assigns each group label a stable integer
// code in first-occurrence order.
package dataprep

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/poolfit/poolfit/internal/domain"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
)

// Preparer turns raw record inputs into an immutable Dataset.
type Preparer struct {
	logger *zap.Logger

	// failOnInvalid rejects the whole input when a record has a
	// non-positive price or area, instead of dropping the record.
	failOnInvalid bool
}

// Option configures a Preparer.
type Option func(*Preparer)

// WithFailOnInvalid makes preparation fail on non-positive price or
// area instead of dropping the offending records.
func WithFailOnInvalid(fail bool) Option {
	return func(p *Preparer) { p.failOnInvalid = fail }
}

// NewPreparer creates a new preparer
func NewPreparer(logger *zap.Logger, opts ...Option) *Preparer {
	p := &Preparer{logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare builds a Dataset from raw inputs. Records with non-positive
// price or area are dropped and counted (or rejected under
// WithFailOnInvalid); a NaN or infinite value is always a hard error
// since it signals a malformed source, not a merely unusable row.
// Group codes are assigned by scanning surviving records once in input
// order, so preparation is deterministic for a fixed input order.
func (p *Preparer) Prepare(name string, inputs []domain.RecordInput) (*domain.Dataset, error) {
	if len(inputs) == 0 {
		return nil, apperrors.Data("no records to prepare")
	}

	records := make([]domain.Record, 0, len(inputs))
	codes := make(map[string]int)
	var groups []string
	dropped := 0

	for i, in := range inputs {
		if err := checkWellFormed(i, in); err != nil {
			return nil, err
		}
		if in.Price <= 0 || in.Area <= 0 {
			if p.failOnInvalid {
				return nil, apperrors.Data("non-positive price or area").
					WithDetail("row", in.RowID)
			}
			dropped++
			continue
		}

		code, ok := codes[in.GroupLabel]
		if !ok {
			code = len(groups)
			codes[in.GroupLabel] = code
			groups = append(groups, in.GroupLabel)
		}

		records = append(records, domain.Record{
			RowID:      in.RowID,
			Price:      in.Price,
			Area:       in.Area,
			GroupLabel: in.GroupLabel,
			LogPrice:   math.Log(in.Price),
			LogArea:    math.Log(in.Area),
			GroupCode:  code,
		})
	}

	if len(records) == 0 {
		return nil, apperrors.Data("all records were dropped during preparation")
	}

	if dropped > 0 {
		p.logger.Warn("dropped records with non-positive price or area",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(records)),
		)
	}

	now := time.Now()
	return &domain.Dataset{
		ID:           uuid.New(),
		Name:         name,
		Records:      records,
		Groups:       groups,
		DroppedCount: dropped,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// checkWellFormed rejects rows whose numeric fields are absent or not
// finite. Zero and negative values are handled by the drop policy, not
// here.
func checkWellFormed(row int, in domain.RecordInput) error {
	id := in.RowID
	if id == "" {
		id = strconv.Itoa(row)
	}
	if in.GroupLabel == "" {
		return apperrors.Data("missing group_label").WithDetail("row", id)
	}
	for _, v := range []float64{in.Price, in.Area} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.Data("price and area must be finite numbers").
				WithDetail("row", id)
		}
	}
	return nil
}
