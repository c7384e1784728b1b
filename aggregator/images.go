package aggregator

import (
	"libercare/config"
	"libercare/types"
)

// pickPhoto draws a stock image for the topic, falling back to every pool combined
func (a *Aggregator) pickPhoto(topic types.Topic) string {
	pool := a.catalog.Images[topic]
	if len(pool) == 0 {
		pool = a.allImages
	}
	if len(pool) == 0 {
		return config.PlaceholderPhoto
	}

	a.rngMu.Lock()
	i := a.rng.Intn(len(pool))
	a.rngMu.Unlock()
	return pool[i]
}
