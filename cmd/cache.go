package cmd

import (
	"fmt"

	"github.com/lepinkainen/cinemabot/internal/cache"
)

// CacheCmd groups cache maintenance subcommands.
type CacheCmd struct {
	Clear CacheClearCmd `cmd:"" help:"Remove cached entries (all caches when no selector is given)"`
	Prune CachePruneCmd `cmd:"" help:"Remove expired entries from every cache"`
}

// CacheClearCmd empties the selected caches.
type CacheClearCmd struct {
	Movies  bool `help:"Clear cached movie metadata"`
	Links   bool `help:"Clear cached watch links"`
	Posters bool `help:"Clear cached poster files"`
}

func (c *CacheClearCmd) Run(_ *Globals) error {
	all := !c.Movies && !c.Links && !c.Posters

	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	selected := map[string]bool{
		cache.NamespaceMovies: all || c.Movies,
		cache.NamespaceLinks:  all || c.Links,
	}
	for _, ns := range cache.Namespaces {
		if !selected[ns] {
			continue
		}
		n, err := a.cache.Clear(ns)
		if err != nil {
			return fmt.Errorf("failed to clear %s cache: %w", ns, err)
		}
		_, _ = fmt.Fprintf(out, "%s: removed %d entries\n", ns, n)
	}

	if all || c.Posters {
		n, err := a.posters.Clear()
		if err != nil {
			return fmt.Errorf("failed to clear posters: %w", err)
		}
		_, _ = fmt.Fprintf(out, "posters: removed %d files\n", n)
	}
	return nil
}

// CachePruneCmd removes entries older than the cache TTL.
type CachePruneCmd struct{}

func (c *CachePruneCmd) Run(_ *Globals) error {
	a, err := loadApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	for _, ns := range cache.Namespaces {
		n, err := a.cache.Prune(ns)
		if err != nil {
			return fmt.Errorf("failed to prune %s cache: %w", ns, err)
		}
		_, _ = fmt.Fprintf(out, "%s: pruned %d entries\n", ns, n)
	}

	n, err := a.posters.Prune()
	if err != nil {
		return fmt.Errorf("failed to prune posters: %w", err)
	}
	_, _ = fmt.Fprintf(out, "posters: pruned %d files\n", n)
	return nil
}
