package clock

import "time"

// Source supplies the current time and may fail (network time, test fakes).
type Source interface {
	Now() (time.Time, error)
}

// Clock reads time from a precise Source and falls back to the local
// wall clock when the source fails. Now never returns an error; the
// second return value reports whether the precise source answered.
type Clock struct {
	source Source
}

// New returns a Clock backed by source. A nil source always falls back.
func New(source Source) *Clock {
	return &Clock{source: source}
}

func (c *Clock) Now() (time.Time, bool) {
	if c.source != nil {
		if t, err := c.source.Now(); err == nil {
			return t, true
		}
	}
	return time.Now(), false
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() (time.Time, error)

func (f SourceFunc) Now() (time.Time, error) { return f() }
