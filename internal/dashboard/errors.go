package dashboard

import "errors"

// errDegraded keeps a summary with failed sections out of the cache.
var errDegraded = errors.New("dashboard: degraded summary not cached")
