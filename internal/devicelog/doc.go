// Package devicelog persists device events into per-device append-only CSV
// logs.
//
// Each device gets one file, outputDir/prefix<device>.csv, with a fixed
// header row written exactly once followed by one row per event:
//
//	Timestamp,Pin,State,Time Difference (sec)
//	2026-03-14 09:26:53.589,Red,on,1.5
//
// Files are opened per append and never rewritten or compacted. Failed
// writes are reported to the caller, which logs and drops the event.
package devicelog
