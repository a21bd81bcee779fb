package server

import (
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/echoogrow/dashboard/orchestrator"
)

// cacheKey pins a render to one version of the source file.
type cacheKey struct {
	path    string
	modTime int64
	size    int64
	topic   string
}

type renderCache struct {
	c *lru.Cache[cacheKey, *orchestrator.Dashboard]
}

// newRenderCache returns nil when size is zero; a nil cache never hits.
func newRenderCache(size int) (*renderCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New[cacheKey, *orchestrator.Dashboard](size)
	if err != nil {
		return nil, err
	}
	return &renderCache{c: c}, nil
}

// key stats path; ok is false when the file cannot be stat'ed.
func (rc *renderCache) key(path, topic string) (cacheKey, bool) {
	if rc == nil {
		return cacheKey{}, false
	}
	fi, err := os.Stat(path)
	if err != nil {
		return cacheKey{}, false
	}
	return cacheKey{path: path, modTime: fi.ModTime().UnixNano(), size: fi.Size(), topic: topic}, true
}

func (rc *renderCache) get(k cacheKey) (*orchestrator.Dashboard, bool) {
	return rc.c.Get(k)
}

func (rc *renderCache) add(k cacheKey, d *orchestrator.Dashboard) {
	rc.c.Add(k, d)
}

func (rc *renderCache) len() int {
	if rc == nil {
		return 0
	}
	return rc.c.Len()
}
