// Package viz provides the terminal view of a running experiment.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [App]: scenario and preset picker
//   - [Model]: live particle view with helm controls
//   - [Canvas]: Braille-based pixel canvas, coloured per material
//
// # Key Bindings
//
//	Space   - Pause/Resume simulation
//	.       - Advance one frame while paused
//	R       - Reset to the initial scene
//	A/D     - Rudder
//	W/S     - Sail
//	[ ]     - Ease/trim the sheet
//	T       - Cycle color themes
//	G       - Toggle GIF recording
//	?       - Show help overlay
//
// # Recording
//
// G toggles recording. When it is toggled off the frames are written to
// sailsim.gif in the current directory.
package viz
