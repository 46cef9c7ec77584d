package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polyclaim/internal/domain"
)

// StringList decodes a JSON field that the Gamma API serves either as a
// real JSON array or as a JSON string containing an encoded array, e.g.
// `"[\"Yes\", \"No\"]"`. Both shapes occur in the wild depending on the
// endpoint and market age.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		*s = nil
		return nil
	}

	// Doubly-encoded form: unwrap the outer string first.
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			*s = nil
			return nil
		}
		data = []byte(inner)
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = items
	return nil
}

// Floats converts each element to float64. Unparseable entries become 0.0
// rather than being dropped: the result must stay parallel to the outcome
// labels or settlement judgment and mark-to-market would pair prices with
// the wrong outcomes.
func (s StringList) Floats() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			f = 0
		}
		out = append(out, f)
	}
	return out
}

// APIPosition is one row of the data API /positions response.
type APIPosition struct {
	ConditionID  string      `json:"conditionId"`
	OutcomeIndex *int        `json:"outcomeIndex"`
	Size         json.Number `json:"size"`
	CurPrice     json.Number `json:"curPrice"`
	Title        string      `json:"title"`
	Outcome      string      `json:"outcome"`
	Redeemable   bool        `json:"redeemable"`
}

// ToDomainPosition converts the API row into a domain Position. A missing
// outcome index maps to -1.
func (p *APIPosition) ToDomainPosition() domain.Position {
	idx := -1
	if p.OutcomeIndex != nil {
		idx = *p.OutcomeIndex
	}
	size, _ := p.Size.Float64()
	price, _ := p.CurPrice.Float64()
	return domain.Position{
		ConditionID:  p.ConditionID,
		OutcomeIndex: idx,
		Size:         size,
		CurPrice:     price,
		Title:        p.Title,
		Outcome:      p.Outcome,
	}
}

// APIFill is one row of the data API /trades response.
type APIFill struct {
	ConditionID string      `json:"conditionId"`
	Outcome     string      `json:"outcome"`
	Side        string      `json:"side"`
	Size        json.Number `json:"size"`
	Price       json.Number `json:"price"`
	Timestamp   json.Number `json:"timestamp"`
	Title       string      `json:"title"`
}

// ToDomainFill converts the API row into a domain Fill. The side string is
// normalised to upper case; the timestamp is epoch seconds. A missing or
// unparseable timestamp maps to the zero time so window filtering can
// exclude it.
func (f *APIFill) ToDomainFill() domain.Fill {
	size, _ := f.Size.Float64()
	price, _ := f.Price.Float64()
	fill := domain.Fill{
		ConditionID: f.ConditionID,
		Outcome:     f.Outcome,
		Side:        domain.FillSide(strings.ToUpper(f.Side)),
		Size:        size,
		Price:       price,
		Title:       f.Title,
	}
	if ts, err := f.Timestamp.Int64(); err == nil && ts > 0 {
		fill.Timestamp = time.Unix(ts, 0).UTC()
	}
	return fill
}

// APIMarket is one row of the Gamma API /markets response, reduced to the
// fields settlement judgment needs. Outcomes and OutcomePrices arrive
// either as arrays or as doubly-encoded JSON strings.
type APIMarket struct {
	ConditionID   string     `json:"conditionId"`
	Closed        bool       `json:"closed"`
	Outcomes      StringList `json:"outcomes"`
	OutcomePrices StringList `json:"outcomePrices"`
}

// ToDomainMetadata converts the API row into domain MarketMetadata.
func (m *APIMarket) ToDomainMetadata() domain.MarketMetadata {
	return domain.MarketMetadata{
		ConditionID:   m.ConditionID,
		Closed:        m.Closed,
		Outcomes:      []string(m.Outcomes),
		OutcomePrices: m.OutcomePrices.Floats(),
	}
}
