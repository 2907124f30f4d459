package fetcher

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// The provider's response schema has drifted several times. Each concern is
// resolved through an ordered candidate-key list, first match wins. Keep the
// lists ordered by how the fields have actually appeared over time.
var (
	entryListKeys = []string{"data", "rates", "items", "result", "content"}
	pairKeys      = []string{"pair", "pairCode", "ccyPair"}
	baseKeys      = []string{"ccy", "currency", "base", "baseCcy", "fromCcy", "currencyFrom", "ccyCode"}
	quoteKeys     = []string{"ccy2", "quote", "term", "quoteCcy", "toCcy", "currencyTo"}
	dateKeys      = []string{"date", "rateDate", "asOf"}
	branchKeys    = []string{"branch", "branchId", "office", "filial"}
	tierListKeys  = []string{"tiers", "gradations", "rates", "items", "rateList", "lines"}
	tierFromKeys  = []string{"from", "fromAmount", "amountFrom"}
	tierToKeys    = []string{"to", "toAmount", "amountTo"}
	tierBuyKeys   = []string{"buy", "buyRate", "rateBuy"}
	tierSellKeys  = []string{"sell", "sellRate", "rateSell"}
)

// Entry is a normalized rate record.
type Entry struct {
	Date   string `json:"date,omitempty"`
	Branch string `json:"branch,omitempty"`
	Pair   string `json:"pair"`
	Tiers  []Tier `json:"tiers"`
}

// Tier is one amount gradation. Nil fields were absent or unparsable.
type Tier struct {
	From *decimal.Decimal `json:"from,omitempty"`
	To   *decimal.Decimal `json:"to,omitempty"`
	Buy  *decimal.Decimal `json:"buy,omitempty"`
	Sell *decimal.Decimal `json:"sell,omitempty"`
}

// Normalize flattens a decoded provider document into entries. It accepts a
// bare list, a wrapper object holding the list under a known key, or a
// single entry object. Normalizing already-normalized output is a no-op.
func Normalize(raw any) []Entry {
	entries := entryList(raw)

	normalized := make([]Entry, 0, len(entries))
	for _, item := range entries {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		normalized = append(normalized, normalizeEntry(obj))
	}
	return normalized
}

func entryList(raw any) []any {
	switch doc := raw.(type) {
	case []any:
		return doc
	case map[string]any:
		for _, key := range entryListKeys {
			if list, ok := doc[key].([]any); ok {
				return list
			}
		}
		return []any{doc}
	default:
		return nil
	}
}

func normalizeEntry(obj map[string]any) Entry {
	entry := Entry{
		Pair:   resolvePair(obj),
		Date:   firstString(obj, dateKeys),
		Branch: firstString(obj, branchKeys),
	}

	tiersRaw := firstList(obj, tierListKeys)
	if tiersRaw == nil {
		// Flat entries carry buy/sell at the top level; treat as a
		// single open-ended tier from zero.
		buy := firstNumber(obj, tierBuyKeys)
		sell := firstNumber(obj, tierSellKeys)
		if buy != nil || sell != nil {
			zero := decimal.Zero
			entry.Tiers = []Tier{{From: &zero, Buy: buy, Sell: sell}}
		}
		return entry
	}

	for _, item := range tiersRaw {
		tierObj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entry.Tiers = append(entry.Tiers, Tier{
			From: firstNumber(tierObj, tierFromKeys),
			To:   firstNumber(tierObj, tierToKeys),
			Buy:  firstNumber(tierObj, tierBuyKeys),
			Sell: firstNumber(tierObj, tierSellKeys),
		})
	}
	return entry
}

func resolvePair(obj map[string]any) string {
	if pair := firstString(obj, pairKeys); pair != "" {
		return pair
	}

	base := firstString(obj, baseKeys)
	quote := firstString(obj, quoteKeys)
	switch {
	case base != "" && quote != "":
		return base + "/" + quote
	case base == "":
		return ""
	}

	if strings.ContainsAny(base, "/-") {
		return base
	}
	if len(base) == 6 && isAlpha(base) && strings.HasSuffix(strings.ToUpper(base), "KZT") {
		return base
	}
	// Provider rates are quoted versus KZT when only one currency appears.
	return base + "/KZT"
}

// SelectPrice picks the representative price for a pair: the tier with a
// zero (or absent) lower bound is the base retail tier, otherwise the first
// tier; the price is the buy/sell midpoint, or whichever side exists.
func SelectPrice(entries []Entry, pair string) (decimal.Decimal, error) {
	target := normalizePairKey(pair)
	for _, entry := range entries {
		if normalizePairKey(entry.Pair) != target {
			continue
		}

		tier, ok := chooseTier(entry.Tiers)
		if !ok {
			continue
		}

		switch {
		case tier.Buy != nil && tier.Sell != nil:
			return tier.Buy.Add(*tier.Sell).Div(decimal.NewFromInt(2)), nil
		case tier.Buy != nil:
			return *tier.Buy, nil
		case tier.Sell != nil:
			return *tier.Sell, nil
		}
	}
	return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrPairNotFound, pair)
}

func chooseTier(tiers []Tier) (Tier, bool) {
	for _, tier := range tiers {
		if tier.From == nil || tier.From.IsZero() {
			return tier, true
		}
	}
	if len(tiers) > 0 {
		return tiers[0], true
	}
	return Tier{}, false
}

func normalizePairKey(pair string) string {
	replacer := strings.NewReplacer("/", "", "-", "")
	return strings.ToUpper(replacer.Replace(pair))
}

func firstString(obj map[string]any, keys []string) string {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return decimal.NewFromFloat(v).String()
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func firstList(obj map[string]any, keys []string) []any {
	for _, key := range keys {
		if list, ok := obj[key].([]any); ok {
			return list
		}
	}
	return nil
}

func firstNumber(obj map[string]any, keys []string) *decimal.Decimal {
	for _, key := range keys {
		if _, present := obj[key]; !present {
			continue
		}
		if d := parseNumber(obj[key]); d != nil {
			return d
		}
	}
	return nil
}

// parseNumber tolerates the provider's numeric spellings: plain numbers,
// strings with thousands spaces, and comma decimal separators.
func parseNumber(value any) *decimal.Decimal {
	switch v := value.(type) {
	case float64:
		d := decimal.NewFromFloat(v)
		return &d
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return &d
		}
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, v)
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
		if cleaned == "" {
			return nil
		}
		if d, err := decimal.NewFromString(cleaned); err == nil {
			return &d
		}
	}
	return nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
