package startup

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// OptString is a string that may be absent. JSON null, an empty string and
// any non-string value decode to an absent value.
type OptString struct {
	Value string
	Set   bool
}

// SomeString returns a present OptString.
func SomeString(v string) OptString { return OptString{Value: v, Set: true} }

// Or returns the value when present, otherwise fallback.
func (o OptString) Or(fallback string) string {
	if o.Set {
		return o.Value
	}
	return fallback
}

func (o *OptString) UnmarshalJSON(data []byte) error {
	*o = OptString{}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			*o = OptString{Value: s, Set: true}
		}
	case float64:
		*o = OptString{Value: strconv.FormatFloat(v, 'f', -1, 64), Set: true}
	}
	return nil
}

func (o OptString) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// OptNumber is a float that may be absent. Numeric strings such as
// "$1,200,000" are accepted; anything else decodes to absent.
type OptNumber struct {
	Value float64
	Set   bool
}

// SomeNumber returns a present OptNumber.
func SomeNumber(v float64) OptNumber { return OptNumber{Value: v, Set: true} }

// Or returns the value when present, otherwise fallback.
func (o OptNumber) Or(fallback float64) float64 {
	if o.Set {
		return o.Value
	}
	return fallback
}

// Ptr returns a pointer to the value, or nil when absent.
func (o OptNumber) Ptr() *float64 {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

func (o *OptNumber) UnmarshalJSON(data []byte) error {
	*o = OptNumber{}
	if v, ok := decodeNumber(data); ok {
		*o = OptNumber{Value: v, Set: true}
	}
	return nil
}

func (o OptNumber) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// OptInt is an integer that may be absent. Fractional values truncate toward
// zero and values outside the int32 range read as absent.
type OptInt struct {
	Value int
	Set   bool
}

// SomeInt returns a present OptInt.
func SomeInt(v int) OptInt { return OptInt{Value: v, Set: true} }

// Or returns the value when present, otherwise fallback.
func (o OptInt) Or(fallback int) int {
	if o.Set {
		return o.Value
	}
	return fallback
}

// Ptr returns a pointer to the value, or nil when absent.
func (o OptInt) Ptr() *int {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

func (o *OptInt) UnmarshalJSON(data []byte) error {
	*o = OptInt{}
	if v, ok := decodeNumber(data); ok && v >= math.MinInt32 && v <= math.MaxInt32 {
		*o = OptInt{Value: int(v), Set: true}
	}
	return nil
}

func (o OptInt) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// decodeNumber accepts finite JSON numbers and numeric strings. NaN and
// infinities read as absent.
func decodeNumber(data []byte) (float64, bool) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, finite(v)
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", "_", "").Replace(strings.TrimSpace(v))
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || !finite(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// StringList accepts a JSON array of strings or a single comma separated
// string. Non-string elements are skipped.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = nil
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				*l = append(*l, strings.TrimSpace(s))
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				*l = append(*l, s)
			}
		}
	}
	return nil
}

// ExtractedFounder is one founder entry as it arrives from extraction.
type ExtractedFounder struct {
	Name            OptString `json:"name"`
	Background      OptString `json:"background"`
	ExperienceYears OptInt    `json:"experience_years"`
	PreviousExits   OptInt    `json:"previous_exits"`
	DomainExpertise OptString `json:"domain_expertise"`
}

// FounderList skips entries that are not JSON objects.
type FounderList []ExtractedFounder

func (l *FounderList) UnmarshalJSON(data []byte) error {
	*l = nil
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	for _, item := range raw {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var f ExtractedFounder
		if err := json.Unmarshal(trimmed, &f); err != nil {
			continue
		}
		*l = append(*l, f)
	}
	return nil
}

// ExtractedMarket is the nested market_analysis object.
type ExtractedMarket struct {
	MarketSize       OptNumber  `json:"market_size"`
	GrowthRate       OptNumber  `json:"growth_rate"`
	CompetitionLevel OptString  `json:"competition_level"`
	KeyPlayers       StringList `json:"key_players"`
	Maturity         OptString  `json:"market_maturity"`
}

// ExtractedMetrics is the nested business_metrics object.
type ExtractedMetrics struct {
	Revenue       OptNumber `json:"revenue"`
	RevenueGrowth OptNumber `json:"revenue_growth"`
	Employees     OptInt    `json:"employees"`
	CAC           OptNumber `json:"cac"`
	LTV           OptNumber `json:"ltv"`
	ChurnRate     OptNumber `json:"churn_rate"`
	BurnRate      OptNumber `json:"burn_rate"`
}

// Extracted is the loosely populated output of extraction. Every field is
// optional and a mismatched type reads as absent.
type Extracted struct {
	CompanyName          OptString   `json:"company_name"`
	ProblemStatement     OptString   `json:"problem_statement"`
	Solution             OptString   `json:"solution"`
	Differentiator       OptString   `json:"differentiator"`
	UniqueDifferentiator OptString   `json:"unique_differentiator"`
	MarketSize           OptNumber   `json:"market_size"`
	MarketGrowthRate     OptNumber   `json:"market_growth_rate"`
	CompetitionLevel     OptString   `json:"competition_level"`
	KeyPlayers           StringList  `json:"key_players"`
	Competitors          StringList  `json:"competitors"`
	MarketMaturity       OptString   `json:"market_maturity"`
	Revenue              OptNumber   `json:"revenue"`
	RevenueGrowth        OptNumber   `json:"revenue_growth"`
	Employees            OptInt      `json:"employees"`
	CAC                  OptNumber   `json:"cac"`
	LTV                  OptNumber   `json:"ltv"`
	ChurnRate            OptNumber   `json:"churn_rate"`
	BurnRate             OptNumber   `json:"burn_rate"`
	FundingStage         OptString   `json:"funding_stage"`
	FundingAmount        OptNumber   `json:"funding_amount"`
	Founders             FounderList `json:"founders"`

	Market  *ExtractedMarket  `json:"market_analysis"`
	Metrics *ExtractedMetrics `json:"business_metrics"`
}

// MarketOrEmpty returns the nested market block or a zero value.
func (e Extracted) MarketOrEmpty() ExtractedMarket {
	if e.Market == nil {
		return ExtractedMarket{}
	}
	return *e.Market
}

// MetricsOrEmpty returns the nested business metrics block or a zero value.
func (e Extracted) MetricsOrEmpty() ExtractedMetrics {
	if e.Metrics == nil {
		return ExtractedMetrics{}
	}
	return *e.Metrics
}

// DecodeExtracted parses raw JSON into Extracted. Only malformed JSON or a
// non-object document is an error; type mismatches inside fields are absorbed.
func DecodeExtracted(data []byte) (Extracted, error) {
	var out Extracted
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return out, nil
	}
	if trimmed[0] != '{' {
		return out, errors.New("extracted data must be a JSON object")
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return out, nil
		}
		return Extracted{}, err
	}
	return out, nil
}

// ParseExtracted converts a generic mapping, as produced by YAML or an MCP
// argument, into Extracted.
func ParseExtracted(raw map[string]any) (Extracted, error) {
	if len(raw) == 0 {
		return Extracted{}, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return Extracted{}, err
	}
	return DecodeExtracted(data)
}
