package testutil

import (
	"sort"
	"time"

	"github.com/systmms/envexplorer/pkg/paramstore"
)

// FixtureTime is the modification time stamped on fixture parameters
var FixtureTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Params builds plain String parameters from name/value pairs.
//
// Example:
//
//	params := testutil.Params(
//	    "/dev/api/DB_HOST", "x",
//	    "/prod/api/DB_HOST", "y",
//	)
func Params(pairs ...string) []paramstore.Parameter {
	if len(pairs)%2 != 0 {
		panic("testutil.Params needs name/value pairs")
	}
	params := make([]paramstore.Parameter, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		params = append(params, paramstore.Parameter{
			Name:         pairs[i],
			Value:        pairs[i+1],
			Type:         paramstore.TypeString,
			LastModified: FixtureTime,
			Version:      1,
		})
	}
	return params
}

// Names returns the names of params, sorted
func Names(params []paramstore.Parameter) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	sort.Strings(names)
	return names
}

// ExampleTemplate is the two-placeholder template most fixtures are shaped for
const ExampleTemplate = "/{env}/{service}/*"

// ExampleParams is the three-key store used to walk through discovery,
// comparison and missing detection end to end.
func ExampleParams() []paramstore.Parameter {
	return Params(
		"/dev/api/DB_HOST", "x",
		"/prod/api/DB_HOST", "y",
		"/dev/web/DB_HOST", "z",
	)
}

// WideParams is a larger, unevenly branching store under two environments
func WideParams() []paramstore.Parameter {
	return Params(
		"/dev/api/DB_HOST", "dev-db",
		"/dev/api/DB_PORT", "5432",
		"/dev/api/cache/REDIS_URL", "redis://dev",
		"/dev/api/cache/ttl/SECONDS", "30",
		"/dev/web/PUBLIC_URL", "https://dev.example.com",
		"/dev/web/DB_HOST", "dev-db",
		"/prod/api/DB_HOST", "prod-db",
		"/prod/api/cache/REDIS_URL", "redis://prod",
		"/prod/web/PUBLIC_URL", "https://example.com",
		"/prod/web/FEATURE_FLAGS", "a,b",
	)
}
