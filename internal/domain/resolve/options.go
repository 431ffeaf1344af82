package resolve

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithOwnerThreshold sets the minimum similarity for a fuzzy owner match.
func WithOwnerThreshold(threshold float64) Option {
	return func(r *Resolver) {
		r.ownerThreshold = threshold
	}
}

// WithPlayerThreshold sets the minimum similarity for a fuzzy player match.
func WithPlayerThreshold(threshold float64) Option {
	return func(r *Resolver) {
		r.playerThreshold = threshold
	}
}

// WithPlayers registers canonical player names. Earlier names win ties.
func WithPlayers(names ...string) Option {
	return func(r *Resolver) {
		r.pendingPlayers = append(r.pendingPlayers, names...)
	}
}

// WithPlayerAliases maps raw spellings to canonical player names. Aliases are
// consulted before any fuzzy matching.
func WithPlayerAliases(aliases map[string]string) Option {
	return func(r *Resolver) {
		for raw, canonical := range aliases {
			r.pendingAliases[raw] = canonical
		}
	}
}
