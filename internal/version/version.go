// ABOUTME: Version and product identification constants
// ABOUTME: Reported by the command-line tools at startup
package version

const (
	Version      = "0.3.0"
	Product      = "Resonate AAL"
	Manufacturer = "Resonate"
)
