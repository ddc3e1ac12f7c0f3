// Package timebucket translates a logical bucket granularity into a bin width
// and a [start, end] window aligned to the snapshot schedule.
package timebucket

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownBucket is returned for tokens that are not a supported TimeBucket.
var ErrUnknownBucket = errors.New("unknown time bucket")

// DefaultSnapshotInterval is how often the store receives a snapshot of every series.
const DefaultSnapshotInterval = 15 * time.Minute

const day = 24 * time.Hour

// TimeBucket is a "<bin>_<range>" granularity token.
type TimeBucket string

// Supported granularities.
const (
	Bucket1h1d TimeBucket = "1h_1d"
	Bucket1h1w TimeBucket = "1h_1w"
	Bucket1h1M TimeBucket = "1h_1M"
	Bucket1d1M TimeBucket = "1d_1M"
	Bucket1d1Y TimeBucket = "1d_1Y"
)

type bucketDef struct {
	bin  time.Duration
	span time.Duration
}

var bucketDefs = map[TimeBucket]bucketDef{
	Bucket1h1d: {bin: time.Hour, span: day},
	Bucket1h1w: {bin: time.Hour, span: 7 * day},
	Bucket1h1M: {bin: time.Hour, span: 30 * day},
	Bucket1d1M: {bin: day, span: 30 * day},
	Bucket1d1Y: {bin: day, span: 365 * day},
}

// All returns every supported bucket, finest first.
func All() []TimeBucket {
	return []TimeBucket{Bucket1h1d, Bucket1h1w, Bucket1h1M, Bucket1d1M, Bucket1d1Y}
}

// ParseTimeBucket validates a raw token.
func ParseTimeBucket(s string) (TimeBucket, error) {
	b := TimeBucket(s)
	if _, ok := bucketDefs[b]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBucket, s)
	}
	return b, nil
}

// Bin returns the width of one bucket.
func (b TimeBucket) Bin() time.Duration { return bucketDefs[b].bin }

// Span returns the length of the requested window.
func (b TimeBucket) Span() time.Duration { return bucketDefs[b].span }

// Valid reports whether b is a supported token.
func (b TimeBucket) Valid() bool {
	_, ok := bucketDefs[b]
	return ok
}

// Params is the aligned window for one query.
type Params struct {
	Bin   time.Duration
	Start time.Time
	End   time.Time
}

// BinSeconds returns Bin in whole seconds.
func (p Params) BinSeconds() int64 { return int64(p.Bin / time.Second) }

// BucketStart returns the start of the bucket containing ts (Unix seconds).
// Buckets are anchored at Start.
func (p Params) BucketStart(ts int64) int64 {
	start := p.Start.Unix()
	return start + floorDiv(ts-start, p.BinSeconds())*p.BinSeconds()
}

// Contains reports whether ts (Unix seconds) is inside [Start, End].
func (p Params) Contains(ts int64) bool {
	return ts >= p.Start.Unix() && ts <= p.End.Unix()
}

// Calculator produces snapshot-aligned Params.
type Calculator struct {
	now              func() time.Time
	snapshotInterval time.Duration
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

// WithSnapshotInterval overrides the snapshot cadence. Non-positive values are ignored.
func WithSnapshotInterval(d time.Duration) Option {
	return func(c *Calculator) {
		if d > 0 {
			c.snapshotInterval = d
		}
	}
}

// NewCalculator creates a Calculator using the wall clock and DefaultSnapshotInterval.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		now:              time.Now,
		snapshotInterval: DefaultSnapshotInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SnapshotAligned returns the window for bucket.
//
// End is the most recent snapshot instant. Start is End minus the bucket span,
// floored to a multiple of the bin width since the Unix epoch, so bucket
// boundaries are the same no matter when the query runs.
func (c *Calculator) SnapshotAligned(bucket TimeBucket) (Params, error) {
	s, ok := bucketDefs[bucket]
	if !ok {
		return Params{}, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}

	end := floorTime(c.now(), c.snapshotInterval)
	start := floorTime(end.Add(-s.span), s.bin)

	return Params{
		Bin:   s.bin,
		Start: start,
		End:   end,
	}, nil
}

// floorTime floors t to a multiple of d since the Unix epoch, in UTC.
func floorTime(t time.Time, d time.Duration) time.Time {
	step := int64(d / time.Second)
	if step <= 0 {
		return t.UTC().Truncate(time.Second)
	}
	secs := t.Unix()
	return time.Unix(secs-mod(secs, step), 0).UTC()
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func floorDiv(a, b int64) int64 {
	return (a - mod(a, b)) / b
}
