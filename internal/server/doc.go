// Package server exposes the visualization harness over HTTP.
//
// The route table covers the embedded demo page, the ordered image listing,
// raw image bytes with caching disabled, run history, a status snapshot, and
// /detect, the server-sent-events stream that drives one classification
// batch per request. Each /detect request owns its own enumeration and
// runner; nothing is shared between concurrent subscribers, so two browser
// tabs are simply two independent runs.
package server
