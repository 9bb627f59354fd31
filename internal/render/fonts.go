package render

import (
	"context"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// FontResolver asks fontconfig which font families are installed and which
// family a requested name actually resolves to.
type FontResolver struct {
	FcList  string
	FcMatch string
	runner  Runner
	matches *lru.Cache[string, string]
}

// NewFontResolver creates a resolver that remembers up to size lookups.
func NewFontResolver(fcList, fcMatch string, size int, runner Runner) *FontResolver {
	if size <= 0 {
		size = 256
	}
	if fcList == "" {
		fcList = "fc-list"
	}
	if fcMatch == "" {
		fcMatch = "fc-match"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	cache, _ := lru.New[string, string](size)
	return &FontResolver{FcList: fcList, FcMatch: fcMatch, runner: runner, matches: cache}
}

// Families lists installed font families, sorted, without the "@"-prefixed
// vertical variants.
func (f *FontResolver) Families(ctx context.Context) ([]string, error) {
	out, err := f.runner.Run(ctx, Command{Name: f.FcList, Args: []string{":", "family"}})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var families []string
	for _, line := range strings.Split(string(out), "\n") {
		for _, name := range strings.Split(line, ",") {
			name = strings.TrimSpace(name)
			if name == "" || strings.HasPrefix(name, "@") || seen[name] {
				continue
			}
			seen[name] = true
			families = append(families, name)
		}
	}
	sort.Strings(families)
	return families, nil
}

// Match returns the family fontconfig substitutes for the requested one.
func (f *FontResolver) Match(ctx context.Context, family string) (string, error) {
	if m, ok := f.matches.Get(family); ok {
		return m, nil
	}

	out, err := f.runner.Run(ctx, Command{Name: f.FcMatch, Args: []string{"-f", "%{family}", family}})
	if err != nil {
		return "", err
	}
	match, _, _ := strings.Cut(strings.TrimSpace(string(out)), ",")
	f.matches.Add(family, match)
	return match, nil
}

// Installed reports whether family resolves to itself rather than to a
// fallback.
func (f *FontResolver) Installed(ctx context.Context, family string) (bool, error) {
	m, err := f.Match(ctx, family)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(m, family), nil
}
