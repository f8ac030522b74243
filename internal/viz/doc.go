// Package viz renders a running body in the terminal with Bubble Tea.
//
//   - [Model]: live view stepping one simulator per frame tick
//   - [Canvas]: braille dot canvas the wireframe is drawn on
//   - [RunInteractive]: preset picker that opens the live view
//
// # Key Bindings
//
//	Space - Pause/Resume
//	D     - Drop an impact onto the top layer
//	R     - Rebuild the body
//	hjkl  - Orbit the camera
//	?     - Show help overlay
package viz
