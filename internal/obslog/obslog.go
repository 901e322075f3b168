// Package obslog holds the single package-level *zap.Logger the rest of
// this module logs through, assigned once at init the way dc4eu-vc wires
// zap through its services. Callers attach request-scoped fields with
// Logger.With(...) (credential id, registry id, referent name) and must
// never log secret material: link secrets, private keys, or raw attribute
// values.
package obslog

import "go.uber.org/zap"

// Logger is the shared structured logger. Production builds of this
// module are expected to run with GOOS/GOARCH defaults suited to a
// library: a no-op core swaps in cleanly via zap.NewNop() in tests that
// don't want log noise.
var Logger = zap.Must(zap.NewProduction())
