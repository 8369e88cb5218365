// Package resilience bounds and retries work.
//
//   - Bulkhead caps how many callers run a section at once. authd runs
//     password derivations behind one so CPU-heavy hashing cannot occupy
//     every goroutine serving requests.
//   - Retry repeats an operation with exponential backoff. It is used for
//     startup connections only; request handling never retries.
package resilience
