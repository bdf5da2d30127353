package conflict

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"low-altitude/uavops/internal/geo"
)

// CachedChecker memoises Check results by route fingerprint. Registries are
// immutable, so cached verdicts never go stale. Outcomes are recorded here
// for hits and misses alike, so the inner checker should not carry a
// recorder of its own.
type CachedChecker struct {
	inner    RouteChecker
	cache    *lru.Cache[string, Result]
	recorder Recorder
}

var _ RouteChecker = (*CachedChecker)(nil)

func NewCachedChecker(inner RouteChecker, size int, recorder Recorder) (*CachedChecker, error) {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New[string, Result](size)
	if err != nil {
		return nil, err
	}
	return &CachedChecker{inner: inner, cache: c, recorder: recorder}, nil
}

func (c *CachedChecker) Check(path []geo.Waypoint) Result {
	key := Fingerprint(path)
	res, ok := c.cache.Get(key)
	if ok {
		res = copyResult(res)
	} else {
		res = c.inner.Check(path)
		c.cache.Add(key, copyResult(res))
	}

	if c.recorder != nil {
		c.recorder.ObserveCheck(res.Valid)
	}
	return res
}

func (c *CachedChecker) Analyze(path []geo.Waypoint) []Violation {
	return c.inner.Analyze(path)
}

// Len is the number of cached verdicts.
func (c *CachedChecker) Len() int {
	return c.cache.Len()
}

// Fingerprint encodes every coordinate at full precision.
func Fingerprint(path []geo.Waypoint) string {
	var b strings.Builder
	for _, p := range path {
		b.WriteString(strconv.FormatFloat(p.Longitude, 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Latitude, 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Altitude, 'g', -1, 64))
		b.WriteByte(';')
	}
	return b.String()
}

func copyResult(r Result) Result {
	if r.Violations != nil {
		r.Violations = append([]Violation(nil), r.Violations...)
	}
	return r
}
