// Package explore answers the questions asked of a template-shaped parameter
// store: which values each placeholder takes, what one key looks like across
// every value of a placeholder, which keys exist for one value but not for
// another, and which concrete prefixes a multi-value selection expands to.
//
// The functions in compare.go, missing.go and combo.go are pure: they take a
// parsed template and a parameter slice and never touch the network.
// Explorer binds them to a live cache for the CLI.
package explore
