// Package history keeps calculation records for display. The calculators
// write to it and never read back from it.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"frizo/futures_calculator/internal/common"
)

var ErrNotFound = errors.New("record not found")

// Kind calculator that produced a record
type Kind string

const (
	KindPosition    Kind = "position"
	KindAddPosition Kind = "add_position"
	KindPyramid     Kind = "pyramid"
	KindPortfolio   Kind = "portfolio"
	KindTarget      Kind = "target"
	KindBreakEven   Kind = "break_even"
	KindEntryPrice  Kind = "entry_price"
	KindMaxPosition Kind = "max_position"
	KindKelly       Kind = "kelly"
	KindRisk        Kind = "risk"
)

// Record one saved calculation
type Record struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Params    json.RawMessage `json:"params"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewRecord encodes params and result, id and time are set by Stamp or on save.
func NewRecord(kind Kind, params, result interface{}) (Record, error) {
	p, err := json.Marshal(params)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s params: %w", kind, err)
	}
	r, err := json.Marshal(result)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s result: %w", kind, err)
	}
	return Record{Kind: kind, Params: p, Result: r}, nil
}

// Store save / list / delete / clear contract. List is newest first, a
// limit <= 0 returns everything.
type Store interface {
	Save(ctx context.Context, r Record) (string, error)
	List(ctx context.Context, limit int) ([]Record, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// Stamp fills id and creation time (at) when missing.
func Stamp(r Record, at time.Time) Record {
	return stamp(r, func() time.Time { return at })
}

// stamp fills id and creation time when missing
func stamp(r Record, now func() time.Time) Record {
	if r.ID == "" {
		r.ID = common.GenerateRecordID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now()
	}
	return r
}

// NopStore drops everything, used when history is disabled.
type NopStore struct{}

func (NopStore) Save(_ context.Context, r Record) (string, error) {
	return stamp(r, time.Now).ID, nil
}

func (NopStore) List(context.Context, int) ([]Record, error) { return nil, nil }

func (NopStore) Delete(context.Context, string) error { return ErrNotFound }

func (NopStore) Clear(context.Context) error { return nil }
