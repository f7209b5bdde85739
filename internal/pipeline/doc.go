// Package pipeline checks pages by running them through a fixed sequence
// of steps: fetch, parse, cart scan and analyze.
//
// Each step reads and fills a shared model.PageReport. The analyze step
// loads the page into a full extension session and starts the analysis the
// way a shopper would: by clicking the first purchase control, or through
// the panel's manual trigger when the page has none.
//
// A BatchProcessor checks many targets concurrently with errgroup.
package pipeline
