// Package logtrace wires up the global zerolog logger and the trace switch
// used by the HTTP server.
package logtrace

import (
	"os"
	"strconv"
)

// IsTraceEnabled reports whether request tracing was switched on via the
// OFFERD_TRACE environment variable. The server dumps its route table at
// startup when enabled.
func IsTraceEnabled() bool {
	v, err := strconv.ParseBool(os.Getenv("OFFERD_TRACE"))
	return err == nil && v
}
