package episodes

// Option is one candidate for a slot, tagged with the scheme under which it
// occupies that slot.
type Option struct {
	Scheme  Scheme
	Episode *Episode
}

// Options is the ordered list of candidates for a single (season, episode)
// slot.
type Options struct {
	entries []Option
}

// add appends ep under scheme unless it is already present or is a literal
// title+date duplicate of an entry in the same scheme. It reports whether
// the entry was added.
func (o *Options) add(scheme Scheme, ep *Episode) bool {
	for _, existing := range o.entries {
		if existing.Episode == ep && existing.Scheme == scheme {
			return false
		}
		if existing.Scheme == scheme && existing.Episode.sameContent(ep) {
			return false
		}
	}
	o.entries = append(o.entries, Option{Scheme: scheme, Episode: ep})
	return true
}

// Lookup returns the entry recorded under pref, falling back to the first
// entry when no entry matches. A slot occupied only under the other scheme
// still resolves to an episode.
func (o Options) Lookup(pref Scheme) *Episode {
	for _, entry := range o.entries {
		if entry.Scheme == pref {
			return entry.Episode
		}
	}
	if len(o.entries) == 0 {
		return nil
	}
	return o.entries[0].Episode
}

// All returns a copy of the entries.
func (o Options) All() []Option {
	out := make([]Option, len(o.entries))
	copy(out, o.entries)
	return out
}

// Len returns the number of entries.
func (o Options) Len() int {
	return len(o.entries)
}

// Episodes returns the distinct episodes in the slot with pref entries
// first.
func (o Options) Episodes(pref Scheme) []*Episode {
	out := make([]*Episode, 0, len(o.entries))
	seen := make(map[*Episode]struct{}, len(o.entries))
	appendScheme := func(scheme Scheme) {
		for _, entry := range o.entries {
			if entry.Scheme != scheme {
				continue
			}
			if _, dup := seen[entry.Episode]; dup || containsContent(out, entry.Episode) {
				continue
			}
			seen[entry.Episode] = struct{}{}
			out = append(out, entry.Episode)
		}
	}
	appendScheme(pref)
	appendScheme(pref.other())
	return out
}

func containsContent(list []*Episode, ep *Episode) bool {
	for _, existing := range list {
		if existing.sameContent(ep) {
			return true
		}
	}
	return false
}
