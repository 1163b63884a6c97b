// Package delta turns consecutive settings events into compact change lines
// such as "FL: PRE +2 HSC -1".
//
// Values are subtracted as decimals so 10.3 - 10.1 renders as "+0.2". Zero
// deltas and zero baselines are suppressed.
package delta
