// Package batch produces the ordered progress stream for one classification
// run.
//
// The pipeline is intentionally single-flow: exactly one classifier child is
// alive at any time, which bounds resource usage and guarantees the event
// ordering without synchronization. Events flow to a Sink (the SSE response
// in the server, a printer in the CLI); a Send failure means the subscriber
// is gone and ends the run at the next emission boundary. Pacing delays are
// presentation-only and configurable down to zero.
package batch
