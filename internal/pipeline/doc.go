// Package pipeline orchestrates a crawl run as an ordered sequence of
// steps sharing a single Run state: check the sink is ready, crawl the
// catalogue streaming records into the sink, then finalize by flushing the
// sink and stamping the report. The first failing step stops the run; its
// error is recorded in the report and records already written stay written.
package pipeline
