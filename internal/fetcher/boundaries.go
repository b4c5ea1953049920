package fetcher

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// FeatureID is a GeoJSON feature id. GeoJSON allows strings or numbers; both
// are kept as their textual form so "01001" keeps its leading zero.
type FeatureID string

// UnmarshalJSON accepts a JSON string or number.
func (id *FeatureID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := sonic.Unmarshal(data, &str); err != nil {
			return err
		}
		*id = FeatureID(str)
		return nil
	}
	*id = FeatureID(s)
	return nil
}

// Feature is one region polygon.
type Feature struct {
	ID         FeatureID              `json:"id"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   json.RawMessage        `json:"geometry"`
}

// Boundaries is a region boundary document keyed by region code.
type Boundaries struct {
	Features []Feature
	index    map[string]int
}

// ParseBoundaries decodes a GeoJSON FeatureCollection.
func ParseBoundaries(data []byte) (*Boundaries, error) {
	var doc struct {
		Type     string    `json:"type"`
		Features []Feature `json:"features"`
	}
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding GeoJSON")
	}
	if doc.Type != "" && doc.Type != "FeatureCollection" {
		return nil, errors.Errorf("expected a FeatureCollection, got %q", doc.Type)
	}

	b := &Boundaries{Features: doc.Features, index: make(map[string]int, len(doc.Features))}
	for i, f := range doc.Features {
		if f.ID == "" {
			continue
		}
		if _, dup := b.index[string(f.ID)]; !dup {
			b.index[string(f.ID)] = i
		}
	}
	return b, nil
}

// Lookup finds the feature for a region code.
func (b *Boundaries) Lookup(code string) (Feature, bool) {
	if b == nil {
		return Feature{}, false
	}
	i, ok := b.index[code]
	if !ok {
		return Feature{}, false
	}
	return b.Features[i], true
}

// Len is the number of features.
func (b *Boundaries) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Features)
}

// FetchBoundaries downloads and parses the boundary document at url.
func (c *Client) FetchBoundaries(ctx context.Context, url string) (*Boundaries, error) {
	body, err := c.get(ctx, "boundaries", url, "application/geo+json, application/json")
	if err != nil {
		return nil, err
	}
	b, err := ParseBoundaries(body)
	if err != nil {
		return nil, &FetchError{Source: "boundaries", URL: url, Err: err}
	}
	c.log.WithField("features", b.Len()).Info("loaded region boundaries")
	return b, nil
}
