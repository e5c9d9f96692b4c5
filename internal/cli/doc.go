// Package cli implements the vu1 command-line interface.
//
// Each Cobra command is a thin wrapper that parses flags and hands off to
// an exported function taking the loaded config and a logger, so the work
// can be tested without going through os.Args.
//
// # Command Structure
//
//	vu1 run              - Run the monitor in the foreground
//	vu1 start            - Run the monitor in the background
//	vu1 stop             - Stop the background monitor
//	vu1 status           - Show monitor and dial state
//	vu1 dials            - List the dials the server reports
//	vu1 backlight        - Set dial backlights
//	vu1 image <file>     - Upload a face image to one dial
//	vu1 reset <element>  - Zero dials, turn backlights off, or restore images
//	vu1 init             - Create vu1.yaml
//
// # Failures
//
// Commands return structured *errors.Error values that Execute prints.
// When the VU1 server can't be reached the failure is logged critically
// and the process exits with status 1.
package cli
