package pipeline

import (
	"errors"
	"sort"

	"atlastag/internal/catalog"
	"atlastag/internal/sheet"
)

// ShowText renders the text-grid representation for the first batches of the
// catalog, exactly as an oracle call would see it. No oracle involved; this
// exists to eyeball the encoding.
func (p *Pipeline) ShowText(batchSize, limit int) ([]string, error) {
	cat, err := p.LoadOutput()
	if errors.Is(err, catalog.ErrNotFound) {
		cat, err = catalog.Load(p.profile.IndexPath(p.cfg.Paths.AssetsDir))
	}
	if err != nil {
		return nil, err
	}
	if batchSize < 1 {
		batchSize = 1
	}
	if limit < 1 {
		limit = 1
	}

	keys := cat.Keys()
	sort.Strings(keys)
	if n := limit * batchSize; len(keys) > n {
		keys = keys[:n]
	}

	loader := p.newSpriteLoader(cat)
	var texts []string
	for start := 0; start < len(keys); start += batchSize {
		end := start + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		valid, raw, _ := loader.collect(keys[start:end], 1)
		if len(valid) == 0 {
			continue
		}
		texts = append(texts, sheet.BatchText(valid, raw, sheet.DefaultAlphaThreshold))
	}
	return texts, nil
}
