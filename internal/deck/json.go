package deck

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type jsonDeck struct {
	Settings Settings        `json:"settings"`
	Subsets  json.RawMessage `json:"subsets"`
}

// ParseJSON decodes the JSON deck format. The subsets object is walked
// token by token because its key order is the output order.
func ParseJSON(data []byte) (*Deck, error) {
	var raw jsonDeck
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	d := &Deck{Settings: raw.Settings}
	if len(raw.Subsets) == 0 || bytes.Equal(bytes.TrimSpace(raw.Subsets), []byte("null")) {
		return d, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Subsets))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("subsets: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("subsets: expected an object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("subsets: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("subsets: expected a subset name")
		}
		var segments []Segment
		if err := dec.Decode(&segments); err != nil {
			return nil, fmt.Errorf("subset %q: %w", name, err)
		}
		d.Subsets = append(d.Subsets, Subset{Name: name, Segments: segments})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("subsets: %w", err)
	}
	return d, nil
}
