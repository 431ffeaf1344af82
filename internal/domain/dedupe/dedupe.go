// Package dedupe tracks canonical trade keys so each trade is kept once.
package dedupe

import (
	"context"

	"github.com/okian/dynasty/internal/domain/model"
)

// Deduper records canonical keys in first-seen order.
type Deduper interface {
	// SeenAndRecord checks whether key was recorded. If not it records key
	// against ref and returns (ref, false); otherwise it returns the ref of
	// the first holder and true.
	SeenAndRecord(ctx context.Context, key string, ref int) (int, bool)

	// Unrecord forgets key so a later record can claim it.
	Unrecord(ctx context.Context, key string)

	Size() int
}

type keyDeduper struct {
	seen map[string]int
}

// NewKeyDeduper creates an empty deduper.
func NewKeyDeduper(opts ...Option) Deduper {
	cfg := options{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &keyDeduper{seen: make(map[string]int, cfg.capacity)}
}

func (d *keyDeduper) SeenAndRecord(_ context.Context, key string, ref int) (int, bool) {
	if first, ok := d.seen[key]; ok {
		return first, true
	}
	d.seen[key] = ref
	return ref, false
}

func (d *keyDeduper) Unrecord(_ context.Context, key string) {
	delete(d.seen, key)
}

func (d *keyDeduper) Size() int { return len(d.seen) }

// Duplicate describes a dropped trade and the trade it repeats.
type Duplicate struct {
	Dropped model.Trade
	KeptRef int
	Key     string
}

// Trades keeps the first trade for every canonical key and returns the rest
// as duplicates. Order of the kept trades is preserved. ref maps a trade to
// the reference reported for it.
func Trades(ctx context.Context, d Deduper, trades []model.Trade, ref func(int, model.Trade) int) ([]model.Trade, []Duplicate) {
	kept := make([]model.Trade, 0, len(trades))
	var dups []Duplicate
	for i, t := range trades {
		key := t.CanonicalKey()
		if first, seen := d.SeenAndRecord(ctx, key, ref(i, t)); seen {
			dups = append(dups, Duplicate{Dropped: t, KeptRef: first, Key: key})
			continue
		}
		kept = append(kept, t)
	}
	return kept, dups
}
