// Package monitor pushes local host telemetry to VU1 dials on a fixed interval.
//
// # Tick Cycle
//
// Loop.Run executes ticks back to back with a blocking sleep between them.
// There is no drift compensation: the spacing between two ticks is the time
// the tick took plus the interval. Within a tick each enabled metric is
// sampled and pushed in a fixed order:
//
//	CPU      - CPU utilisation percent, truncated to an integer
//	GPU      - utilisation from the configured GPU backend (0 without a GPU)
//	MEMORY   - virtual memory utilisation percent, truncated
//	NETWORK  - whole MiB received since the previous tick
//
// Pushes are sequential and blocking; nothing is sent to the dials
// concurrently.
//
// # Metric Selection
//
// Metrics are either chosen explicitly (Options.Roles) or auto-detected:
// every role the registry has a dial for is enabled. A loop with nothing
// enabled fails before sampling anything.
//
// # Network Baseline
//
// The NETWORK metric is a delta. The first tick only records the byte
// counter; later ticks push floor((now - prev) / 1048576) and move the
// baseline forward after every push attempt, whether or not it succeeded.
//
// # Failure Handling
//
//	Dial missing from the registry   - logged critically, Run returns the error
//	Server unreachable               - logged critically, Run returns the error
//	Non-2xx response / spent retries - logged, the tick moves to the next metric
//	Sampling failure                 - logged, the metric is skipped this tick
//
// Run returns nil when its context is cancelled.
package monitor
