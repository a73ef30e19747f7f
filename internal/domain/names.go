// Package domain contains the core business entities and value objects.
package domain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// ResolvedName identifies a dataset inside a container. The zero value
// is an empty name. Path is always a pure function of the two fields.
type ResolvedName struct {
	Container string // Enclosing workspace; empty means "none / default"
	Name      string // Dataset name, unique within Container
}

// Path returns the full catalog path for the name.
func (n ResolvedName) Path() string {
	if n.Container == "" {
		return n.Name
	}
	return filepath.Join(n.Container, n.Name)
}

// IsZero returns true if nothing has been resolved.
func (n ResolvedName) IsZero() bool {
	return n.Container == "" && n.Name == ""
}

// String implements fmt.Stringer.
func (n ResolvedName) String() string {
	return n.Path()
}

// UniqueNamer is the backing-store capability that produces a
// collision-free variant of a candidate name inside a container.
type UniqueNamer interface {
	UniqueName(ctx context.Context, name, container string) (string, error)
}

// ResolveOptions controls name resolution.
type ResolveOptions struct {
	// Temporary marks the dataset as scratch-scoped: the container
	// defaults to Scratch and the name is made collision-free by Namer.
	Temporary bool

	// Scratch is the container used for temporaries whose locator
	// carries no container of its own.
	Scratch string

	// Sanitize maps characters in the name to replacements. Nil means
	// no substitution. The container is never sanitized.
	Sanitize map[rune]string

	// Prefix salts temporary names before uniquification so that
	// independent workers can share a scratch container.
	Prefix string

	// Namer produces unique names for temporaries. Required when
	// Temporary is set.
	Namer UniqueNamer
}

// DefaultSanitizeMap returns the substitutions applied to table-like
// dataset names: spaces become underscores, periods are removed.
func DefaultSanitizeMap() map[rune]string {
	return map[rune]string{' ': "_", '.': ""}
}

// SanitizeName applies a character substitution map to name. A nil map
// returns name unchanged.
func SanitizeName(name string, subst map[rune]string) string {
	if subst == nil {
		return name
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if repl, ok := subst[r]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SplitLocator decomposes a locator into its container and base name.
// A locator without a separator resolves to an empty container. When a
// locator carries several separators only the last segment becomes the
// name; everything before it is the container.
func SplitLocator(locator string) ResolvedName {
	dir, base := filepath.Split(filepath.FromSlash(locator))
	dir = strings.TrimRight(dir, string(filepath.Separator))
	return ResolvedName{Container: dir, Name: base}
}

// containsSeparator reports whether s embeds a path separator.
func containsSeparator(s string) bool {
	return strings.ContainsRune(s, '/') || strings.ContainsRune(s, '\\') ||
		strings.ContainsRune(s, filepath.Separator)
}

// Resolve normalizes a caller-supplied locator into a ResolvedName.
//
// When name is empty the locator is split into container and name.
// When name is given the locator is taken verbatim as the container; a
// name that itself embeds a separator is rejected with ErrInvalidName.
//
// For temporaries the container falls back to opts.Scratch, the name is
// sanitized and optionally salted with opts.Prefix, and opts.Namer is
// asked for a collision-free variant inside the container. The final
// name is re-derived from the namer's answer, which may be either a
// bare name or a full path.
func Resolve(ctx context.Context, locator, name string, opts ResolveOptions) (ResolvedName, error) {
	if name != "" && containsSeparator(name) {
		return ResolvedName{}, fmt.Errorf("explicit name %q contains a path separator: %w", name, ErrInvalidName)
	}

	if !opts.Temporary {
		if name == "" {
			return SplitLocator(locator), nil
		}
		return ResolvedName{
			Container: locator,
			Name:      SanitizeName(name, opts.Sanitize),
		}, nil
	}

	rn := decode(locator, name)
	if rn.Container == "" {
		rn.Container = opts.Scratch
	}
	candidate := SanitizeName(rn.Name, opts.Sanitize)
	if opts.Prefix != "" {
		candidate = opts.Prefix + "_" + candidate
	}

	if opts.Namer == nil {
		return ResolvedName{}, fmt.Errorf("temporary name %q needs a unique-name service: %w", candidate, ErrInvalidInput)
	}
	unique, err := opts.Namer.UniqueName(ctx, candidate, rn.Container)
	if err != nil {
		return ResolvedName{}, fmt.Errorf("unique name for %q in %q: %w", candidate, rn.Container, err)
	}
	if containsSeparator(unique) {
		return SplitLocator(unique), nil
	}
	return ResolvedName{Container: rn.Container, Name: unique}, nil
}

// decode mirrors the non-sanitizing half of Resolve: locator splitting
// when no explicit name is given, verbatim composition otherwise.
func decode(locator, name string) ResolvedName {
	if name == "" {
		return SplitLocator(locator)
	}
	return ResolvedName{Container: locator, Name: name}
}
