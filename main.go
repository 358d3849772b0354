// =============================================================================
// ASYCUDA Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the ASYCUDA Converter CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   asycuda-converter convert    - Convert workbooks to ASYCUDA XML
//   asycuda-converter serve      - Run the HTTP conversion service
//   asycuda-converter validate   - Validate configuration, constants, workbooks
//   asycuda-converter schema     - Print the XSD of the output document
//   asycuda-converter version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : extraction, mapping, serialization, batch, HTTP service
//   - pkg/       : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/asycuda-converter/cmd"
)

func main() {
	cmd.Execute()
}
