package store

import (
	"encoding/json"
	"fmt"

	"familyassets/internal/core"
)

// Encode serializes the collection as a JSON array. A nil collection is
// written as [] so it reads back as empty rather than missing.
func Encode(assets []core.Asset) ([]byte, error) {
	if assets == nil {
		assets = []core.Asset{}
	}
	b, err := json.Marshal(assets)
	if err != nil {
		return nil, fmt.Errorf("encode assets: %w", err)
	}
	return b, nil
}

// Decode parses a stored collection.
func Decode(b []byte) ([]core.Asset, error) {
	var assets []core.Asset
	if err := json.Unmarshal(b, &assets); err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}
	if assets == nil {
		assets = []core.Asset{}
	}
	return assets, nil
}
