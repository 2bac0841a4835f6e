// Package interact turns raw pointer input on the diagram canvas into
// viewport changes and navigation intents.
//
// Pointer drags pan the viewport and clicks on a node navigate to that
// collection. Both arrive on the same surface, so a release that ends a drag
// is usually followed by a click on whatever node sits under the pointer.
// [Machine] tracks whether the pointer moved during the last drag and keeps
// that latch readable for a short grace window after release, so the
// trailing click is dropped.
//
//	Idle --down--> Panning --up/leave--> Idle
//	                  |
//	                move (pan = origin.pan + pointer - origin.pointer)
//
// Wheel input zooms in any state, anchored at the pointer.
//
// Time is passed in with each event instead of read from a clock, so the
// grace window is deterministic under test and over the wire.
package interact
