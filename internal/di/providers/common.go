package providers

import "time"

// shutdownTimeout is the maximum time to wait for graceful shutdown of the
// HTTP servers and their in-flight requests.
const shutdownTimeout = 30 * time.Second
