package pipeline

import "time"

// TWatchdog is the window the watchdog gives every stage to make progress
// before deciding it is stuck.
const TWatchdog = 2 * time.Second

// PingAttempts is how many times per TWatchdog window a stalled lock
// acquisition re-pings liveness while waiting; it sets LockSlice. The retry
// loop itself has no attempt limit.
const PingAttempts = 4

// LockSlice paces the TryLock retry loop standing in for
// pthread_mutex_timedlock, which Go's sync.Mutex has no equivalent of.
const LockSlice = TWatchdog / PingAttempts

// itemSizeEstimate is the assumed size in bytes of one queued log event,
// used only to turn a queue depth into a human-readable backlog size for
// watchdog trip diagnostics. It does not need to be exact.
const itemSizeEstimate = 128
