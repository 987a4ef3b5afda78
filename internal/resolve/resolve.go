// Package resolve estimates commute time and grammar school proximity for
// a property postcode relative to a reference postcode.
//
// An unresolved lookup is not an error: resolvers return a Resolution whose
// fields are nil. Errors are reserved for transport failures, which callers
// degrade to unresolved.
package resolve

import (
	"context"
	"strings"

	"github.com/sells-group/property-cli/internal/model"
	"github.com/sells-group/property-cli/internal/normalize"
)

// Query identifies one lookup.
type Query struct {
	Postcode  string
	Reference string
}

// Normalized returns q with both postcodes in canonical form.
func (q Query) Normalized() Query {
	pc, _ := normalize.CanonicalPostcode(q.Postcode)
	ref, _ := normalize.CanonicalPostcode(q.Reference)
	return Query{Postcode: pc, Reference: ref}
}

func (q Query) key() string {
	n := q.Normalized()
	return n.Postcode + "|" + n.Reference
}

// Resolver looks up location-derived attributes. Implementations must be
// deterministic for identical queries within a session.
type Resolver interface {
	Resolve(ctx context.Context, q Query) (*model.Resolution, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, q Query) (*model.Resolution, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, q Query) (*model.Resolution, error) {
	return f(ctx, q)
}

// Unresolved returns an empty Resolution tagged with source.
func Unresolved(source string) *model.Resolution {
	return &model.Resolution{Source: source}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
