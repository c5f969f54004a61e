package fightapi

import jsoniter "github.com/json-iterator/go"

var fightJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// The provider has two response shapes for the same resource: a flat array of
// fights, or an object keyed by arbitrary date strings. decodeFights branches
// on the leading token and flattens both into dated records.

type fightRecord struct {
	ID            int64           `json:"id"`
	Fighter1      string          `json:"fighter1"`
	Fighter2      string          `json:"fighter2"`
	Date          string          `json:"date"`
	Event         string          `json:"event"`
	Location      string          `json:"location"`
	Status        string          `json:"status"`
	WeightClass   string          `json:"weight_class"`
	Rounds        int             `json:"rounds"`
	Winner        string          `json:"winner"`
	Method        string          `json:"method"`
	EndRound      int             `json:"end_round"`
	EndTime       string          `json:"end_time"`
	TitleFight    bool            `json:"title_fight"`
	Fighter1Stats *fighterSummary `json:"fighter1_stats"`
	Fighter2Stats *fighterSummary `json:"fighter2_stats"`
}

type fighterSummary struct {
	Record string `json:"record"`
}

// datedRecord pairs a raw fight with the date key it arrived under, so
// normalization can fall back to the grouping key when the record itself has
// no usable date field.
type datedRecord struct {
	DateKey string
	Raw     []byte
}

func decodeFights(raw []byte) ([]datedRecord, error) {
	trimmed := firstNonSpace(raw)
	switch trimmed {
	case '[':
		var items []fightJSONRaw
		if err := fightJSON.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		out := make([]datedRecord, 0, len(items))
		for _, item := range items {
			out = append(out, datedRecord{Raw: item})
		}
		return out, nil
	case '{':
		var grouped map[string][]fightJSONRaw
		if err := fightJSON.Unmarshal(raw, &grouped); err != nil {
			return nil, err
		}
		out := make([]datedRecord, 0, len(grouped))
		for dateKey, items := range grouped {
			for _, item := range items {
				out = append(out, datedRecord{DateKey: dateKey, Raw: item})
			}
		}
		return out, nil
	default:
		return nil, errUnexpectedShape
	}
}

type fightJSONRaw []byte

func (r *fightJSONRaw) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

func firstNonSpace(raw []byte) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
