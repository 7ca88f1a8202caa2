// Package fakes provides test doubles for the parameter store and the AWS
// SDK clients behind it.
//
// Fakes are manually implemented (not generated) to provide precise control
// over test behavior: seeded data, injected errors, latency and call counts.
//
// Usage:
//
//	store := fakes.NewFakeStore().
//	    WithParameters(testutil.ExampleParams()...).
//	    WithListError("/broken", errors.New("AccessDeniedException"))
//	c := cache.New(store, cache.WithPrefixes("/", "/broken"))
//
//	api := fakes.NewFakeSSMClient()
//	api.AddStringParameter("/dev/api/DB_HOST", "x")
//	client := providers.NewSSMClient(aws.Config{}, providers.WithSSMAPI(api))
package fakes
