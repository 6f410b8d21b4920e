package timeconv

import (
	"fmt"
	"time"

	"github.com/maypok86/otter/v2"
)

const (
	defaultLabelCacheSize = 4096
	secondsPerHour        = 3600
	secondsPerMinute      = 60
)

type labelKind uint8

const (
	kindOffset labelKind = iota
	kindAbbreviation
)

type labelKey struct {
	zone   string
	offset int
	kind   labelKind
}

// LabelerOption applies a configuration option to the Labeler.
type LabelerOption func(*Labeler)

// WithAbbreviations overrides the abbreviation shown for specific zones.
func WithAbbreviations(overrides map[string]string) LabelerOption {
	return func(l *Labeler) {
		for zone, abbr := range overrides {
			if abbr != "" {
				l.overrides[zone] = abbr
			}
		}
	}
}

// WithLabelCacheSize bounds the number of cached labels.
func WithLabelCacheSize(size int) LabelerOption {
	return func(l *Labeler) {
		if size > 0 {
			l.cacheSize = size
		}
	}
}

// Labeler produces display-only zone labels such as "UTC+05:30" or "PST".
// Labels depend on the instant because offsets change with DST.
type Labeler struct {
	resolver  Resolver
	overrides map[string]string
	cacheSize int
	cache     *otter.Cache[labelKey, string]
}

// NewLabeler creates a Labeler resolving zones through resolver.
func NewLabeler(resolver Resolver, opts ...LabelerOption) *Labeler {
	if resolver == nil {
		resolver = NewCachedResolver()
	}
	l := &Labeler{
		resolver:  resolver,
		overrides: make(map[string]string),
		cacheSize: defaultLabelCacheSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.cache = otter.Must(&otter.Options[labelKey, string]{
		MaximumSize: l.cacheSize,
	})
	return l
}

// OffsetLabel returns the UTC offset of zone at instant, e.g. "UTC-08:00".
func (l *Labeler) OffsetLabel(zone string, at time.Time) (string, error) {
	loc, err := l.resolver.Resolve(zone)
	if err != nil {
		return "", err
	}
	_, offset := at.In(loc).Zone()
	key := labelKey{zone: zone, offset: offset, kind: kindOffset}
	if s, ok := l.cache.GetIfPresent(key); ok {
		return s, nil
	}
	s := FormatOffset(offset)
	l.cache.Set(key, s)
	return s, nil
}

// Abbreviation returns the short zone name in effect at instant. Zones
// without a lettered abbreviation fall back to the offset label.
func (l *Labeler) Abbreviation(zone string, at time.Time) (string, error) {
	if abbr, ok := l.overrides[zone]; ok {
		return abbr, nil
	}
	loc, err := l.resolver.Resolve(zone)
	if err != nil {
		return "", err
	}
	name, offset := at.In(loc).Zone()
	key := labelKey{zone: zone, offset: offset, kind: kindAbbreviation}
	if s, ok := l.cache.GetIfPresent(key); ok {
		return s, nil
	}
	s := name
	if s == "" || s[0] == '+' || s[0] == '-' {
		s = FormatOffset(offset)
	}
	l.cache.Set(key, s)
	return s, nil
}

// FormatOffset renders an offset in seconds east of UTC as UTC±HH:MM.
func FormatOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, seconds/secondsPerHour, (seconds%secondsPerHour)/secondsPerMinute)
}
