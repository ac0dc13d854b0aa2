// Package scanner discovers candidate files under the source tree and runs
// the polling loop that hands them to the processor.
//
// Work is strictly sequential: one pass at a time, one file at a time. A
// failure while handling one file is logged and the pass moves on to the
// next; a failure of the whole pass is logged and the loop sleeps until the
// next one.
package scanner
