package config

import (
	"fmt"
	"sort"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/dynasty/internal/domain/model"
	"github.com/okian/dynasty/internal/domain/resolve"
)

// Owner lists every spelling that refers to one canonical owner.
type Owner struct {
	ID            string   `koanf:"id"`
	Abbreviations []string `koanf:"abbreviations"`
	TeamNames     []string `koanf:"team_names"`
	DisplayNames  []string `koanf:"display_names"`
}

// League holds the alias tables. It is read once and never mutated.
type League struct {
	Owners        []Owner           `koanf:"owners"`
	PlayerAliases map[string]string `koanf:"player_aliases"`
	Players       []string          `koanf:"players"`
}

// LoadLeague reads the alias tables from a YAML file.
func LoadLeague(path string) (*League, error) {
	// Player names carry dots, so keys are split on a delimiter they never use.
	k := koanf.New("::")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	var l League
	if err := k.UnmarshalWithConf("", &l, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks owner ids are present and unique. Alias ambiguity is
// checked by the resolver.
func (l *League) Validate() error {
	if len(l.Owners) == 0 {
		return fmt.Errorf("%w: no owners", ErrInvalidLeague)
	}
	seen := make(map[string]bool, len(l.Owners))
	for _, o := range l.Owners {
		if o.ID == "" {
			return fmt.Errorf("%w: owner without id", ErrInvalidLeague)
		}
		if seen[o.ID] {
			return fmt.Errorf("%w: duplicate owner %s", ErrInvalidLeague, o.ID)
		}
		seen[o.ID] = true
	}
	return nil
}

// OwnerIDs returns the canonical owner enumeration, sorted.
func (l *League) OwnerIDs() []model.OwnerID {
	out := make([]model.OwnerID, 0, len(l.Owners))
	for _, o := range l.Owners {
		out = append(out, model.OwnerID(o.ID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OwnerEntries flattens every owner's spellings for the resolver.
func (l *League) OwnerEntries() []resolve.OwnerEntry {
	out := make([]resolve.OwnerEntry, 0, len(l.Owners))
	for _, o := range l.Owners {
		aliases := make([]string, 0, len(o.Abbreviations)+len(o.TeamNames)+len(o.DisplayNames))
		aliases = append(aliases, o.Abbreviations...)
		aliases = append(aliases, o.TeamNames...)
		aliases = append(aliases, o.DisplayNames...)
		out = append(out, resolve.OwnerEntry{ID: model.OwnerID(o.ID), Aliases: aliases})
	}
	return out
}

// Resolver builds the entity resolver for the league with the configured
// thresholds. players extends the configured player universe, typically with
// every name found in the statistics snapshot.
func (l *League) Resolver(c *Config, players ...string) (*resolve.Resolver, error) {
	r, err := resolve.New(l.OwnerEntries(),
		resolve.WithOwnerThreshold(c.OwnerThreshold),
		resolve.WithPlayerThreshold(c.PlayerThreshold),
		resolve.WithPlayers(l.Players...),
		resolve.WithPlayers(players...),
		resolve.WithPlayerAliases(l.PlayerAliases),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLeague, err)
	}
	return r, nil
}
