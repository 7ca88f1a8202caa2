// Package paramstore defines the boundary between envexplorer and the
// hierarchical parameter store it browses.
//
// A parameter store holds slash-delimited names such as
//
//	/prod/api/DB_HOST
//
// each carrying a string value, a type and a modification time. The engine
// never talks to the network itself; it consumes a Client:
//
//	type Client interface {
//	    ListByPrefix(ctx, prefix) ([]Parameter, error)
//	    PutParameter(ctx, name, value, typ, overwrite) error
//	    ListHistory(ctx, name) ([]HistoryEntry, error)
//	}
//
// ListByPrefix is recursive and returns decrypted values with every page
// already drained. The AWS Systems Manager implementation lives in
// internal/providers; tests use the fakes in tests/fakes.
package paramstore
