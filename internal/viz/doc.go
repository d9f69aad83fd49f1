// Package viz is the terminal front end for building tracks and riding them.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [App]: track picker and physics tuning screen
//   - [Model]: live editor and ride view
//   - [Canvas]: Braille-based pixel canvas with per-cell ink
//
// # Key Bindings
//
//	Click - Add a control point
//	Space - Launch the gondola
//	P     - Pause/Resume
//	R     - Reset the gondola to idle
//	C     - Clear the track
//	s/S   - Save the ride or the canvas as SVG
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
