// Package logging prints diagnostics through pterm and keeps credentials out
// of them. Debug output is off until SetDebug(true).
package logging

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
)

// Diagnostics go to stderr; stdout carries result output.
func init() {
	pterm.SetDefaultOutput(os.Stderr)
}

// SetDebug switches debug messages on or off.
func SetDebug(on bool) {
	if on {
		pterm.EnableDebugMessages()
		return
	}
	pterm.DisableDebugMessages()
}

// Debugf prints a masked debug line.
func Debugf(format string, args ...any) {
	pterm.Debug.Println(Mask(fmt.Sprintf(format, args...)))
}

// Infof prints a masked info line.
func Infof(format string, args ...any) {
	pterm.Info.Println(Mask(fmt.Sprintf(format, args...)))
}

// Warnf prints a masked warning.
func Warnf(format string, args ...any) {
	pterm.Warning.Println(Mask(fmt.Sprintf(format, args...)))
}

// Errorf prints a masked error line.
func Errorf(format string, args ...any) {
	pterm.Error.Println(Mask(fmt.Sprintf(format, args...)))
}

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}
