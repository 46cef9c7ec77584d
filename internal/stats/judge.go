package stats

import (
	"context"
	"errors"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

const (
	// resolvedMaxPrice: a settled market reports the winner at or above
	// this price.
	resolvedMaxPrice = 0.99

	// resolvedMinPrice: a settled market reports at least one loser at or
	// below this price.
	resolvedMinPrice = 0.01
)

// Judge derives a settlement judgment from market metadata. A market is
// resolved only when it is closed and its price vector is near-binary:
// max >= 0.99 and min <= 0.01, with parallel outcome and price vectors of
// at least two entries. Anything else is unresolved and excluded from
// settled figures.
func Judge(meta domain.MarketMetadata) domain.SettlementJudgment {
	if !meta.Closed {
		return domain.SettlementJudgment{}
	}
	if len(meta.Outcomes) < 2 || len(meta.Outcomes) != len(meta.OutcomePrices) {
		return domain.SettlementJudgment{}
	}

	maxIdx := 0
	minPrice := meta.OutcomePrices[0]
	for i, p := range meta.OutcomePrices {
		if p > meta.OutcomePrices[maxIdx] {
			maxIdx = i
		}
		if p < minPrice {
			minPrice = p
		}
	}

	if meta.OutcomePrices[maxIdx] < resolvedMaxPrice || minPrice > resolvedMinPrice {
		return domain.SettlementJudgment{}
	}

	return domain.SettlementJudgment{
		Resolved:       true,
		WinningOutcome: meta.Outcomes[maxIdx],
	}
}

// MetadataSource looks up settlement metadata for one condition ID.
type MetadataSource interface {
	MarketByConditionID(ctx context.Context, conditionID string) (domain.MarketMetadata, error)
}

// CachingMetadataSource memoizes lookups for the lifetime of one run. The
// cache is per-run only: settlement state changes between runs and must
// never be persisted.
type CachingMetadataSource struct {
	src   MetadataSource
	cache map[string]cachedMeta
}

type cachedMeta struct {
	meta domain.MarketMetadata
	err  error
}

// NewCachingMetadataSource wraps src with a per-run memo.
func NewCachingMetadataSource(src MetadataSource) *CachingMetadataSource {
	return &CachingMetadataSource{
		src:   src,
		cache: make(map[string]cachedMeta),
	}
}

// MarketByConditionID returns the cached result when present, otherwise
// delegates and memoizes. Not-found results are cached too; transient
// errors are not, so a retry within the run can still succeed.
func (c *CachingMetadataSource) MarketByConditionID(ctx context.Context, conditionID string) (domain.MarketMetadata, error) {
	if hit, ok := c.cache[conditionID]; ok {
		return hit.meta, hit.err
	}

	meta, err := c.src.MarketByConditionID(ctx, conditionID)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		c.cache[conditionID] = cachedMeta{meta: meta, err: err}
	}
	return meta, err
}
