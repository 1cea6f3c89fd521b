package update

import (
	"fmt"

	"github.com/hashicorp/go-version"

	"github.com/LHolmes69/ccs-calendarserver/cli/internal/ui"
)

// latestKnownVersion is the newest release the build knows about. Set at
// build time alongside the CLI version.
var latestKnownVersion = "0.1.0"

// CheckForUpdates compares the running version against the latest known
// release and prints a notice when an update is available.
func CheckForUpdates(currentVersion string) error {
	current, err := version.NewVersion(currentVersion)
	if err != nil {
		return fmt.Errorf("invalid version format: %w", err)
	}

	latest, err := version.NewVersion(latestKnownVersion)
	if err != nil {
		return fmt.Errorf("invalid latest version format: %w", err)
	}

	if current.LessThan(latest) {
		ui.PrintWarning("A new version is available!")
		fmt.Printf("Current version: %s\n", currentVersion)
		fmt.Printf("Latest version:  %s\n", latestKnownVersion)
		fmt.Printf("\nUpdate with: go install github.com/LHolmes69/ccs-calendarserver/cli@latest\n")
	}

	return nil
}
