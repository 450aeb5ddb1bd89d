// ABOUTME: Tests for version constants
// ABOUTME: Ensures the identification the tools print is well formed
package version

import (
	"regexp"
	"testing"
)

func TestConstantsDefined(t *testing.T) {
	fields := map[string]string{
		"Version":      Version,
		"Product":      Product,
		"Manufacturer": Manufacturer,
	}

	for name, value := range fields {
		if value == "" {
			t.Errorf("%s should not be empty", name)
		}
		if len(value) > 100 {
			t.Errorf("%s is unreasonably long", name)
		}
	}
}

func TestVersionIsSemver(t *testing.T) {
	if !regexp.MustCompile(`^\d+\.\d+\.\d+$`).MatchString(Version) {
		t.Errorf("Version %q is not major.minor.patch", Version)
	}
}
