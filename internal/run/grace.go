package run

import "time"

// gracePeriod bounds how long a lane's cleanup goroutine waits for a
// best-effort Destroy to finish once its run has been stopped or has
// failed (spec.md §5 resource policy default).
const gracePeriod = 30 * time.Second
