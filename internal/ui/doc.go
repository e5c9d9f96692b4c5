// Package ui provides styled terminal output for vu1's commands.
//
// # Components Overview
//
//	Spinner         - Animated status line for blocking server calls
//	RenderGauge     - Dial value as a colored bar
//	RenderDialTable - Table of the server's dials and their role bindings
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Successful operations, low dial values
//	ColorError     (red)    - Failures, dial values from 80
//	ColorWarning   (yellow) - Warnings, dial values from 60
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text, timing info
//
// Use DisableColors() to switch to monochrome output (for --no-color flag).
package ui
