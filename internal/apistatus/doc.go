// Package apistatus tracks whether the generation backend is reachable.
//
// Service is the single process-wide owner of that flag. Views read it with
// Connected or Status and follow changes through Subscribe. The generation
// client reports the outcome of every request, and Monitor periodically
// probes the health endpoint so the flag stays current while the wizard idles.
package apistatus
