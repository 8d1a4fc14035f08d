package models

type Quote struct {
	ID        string   `json:"id" yaml:"id"`
	Text      string   `json:"text" yaml:"text"`
	Reference string   `json:"reference" yaml:"reference"`
	Theme     string   `json:"theme" yaml:"theme"`
	Tags      []string `json:"tags" yaml:"tags"`
	Context   string   `json:"context,omitempty" yaml:"context"`
}

// QuotesByID resolves ids against quotes, keeping the order of ids and skipping unknown ones.
func QuotesByID(quotes []Quote, ids []string) []Quote {
	index := make(map[string]Quote, len(quotes))
	for _, q := range quotes {
		index[q.ID] = q
	}
	out := make([]Quote, 0, len(ids))
	for _, id := range ids {
		if q, ok := index[id]; ok {
			out = append(out, q)
		}
	}
	return out
}
