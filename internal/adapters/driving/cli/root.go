// Package cli provides the archie command line interface.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driving"
	"github.com/custodia-labs/archie/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services are the driving ports and record readers the commands use.
type Services struct {
	Update   driving.UpdateService
	Creators driving.CreatorService
	History  driving.RunHistory

	// OpenRecords opens a CSV of document records. The returned func
	// closes the file.
	OpenRecords func(path string) (driving.RecordSource, func() error, error)

	// ReadFixes reads a creator corrections CSV.
	ReadFixes func(path string) ([]domain.CreatorFix, error)
}

// Wiring builds Services from the config directory. The returned func
// releases whatever the services hold open.
type Wiring func(configDir string) (*Services, func() error, error)

var (
	wire     Wiring
	services *Services
	closeFn  func() error
)

var rootCmd = &cobra.Command{
	Use:   "archie",
	Short: "Keep an archival index and its artifact storage consistent",
	Long: `archie applies metadata updates to an archival search index and moves each
document's artifacts into the storage repository its access rights name.

Index and storage backends are configured in ~/.archie/config.toml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default ~/.archie)")
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// SetWiring registers how services are built. Wiring runs on first use so
// commands that need no backend work without configuration.
func SetWiring(w Wiring) {
	wire = w
}

// SetServices injects ready-made services.
func SetServices(s *Services) {
	services = s
}

// Execute runs the root command and closes any services it opened.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeServices(); err == nil {
		err = cerr
	}
	return err
}

// loadServices returns the injected services, building them if needed.
func loadServices() (*Services, error) {
	if services != nil {
		return services, nil
	}
	if wire == nil {
		return nil, errors.New("services not configured")
	}
	s, closer, err := wire(configDir)
	if err != nil {
		return nil, err
	}
	services, closeFn = s, closer
	return services, nil
}

func closeServices() error {
	if closeFn == nil {
		return nil
	}
	err := closeFn()
	closeFn = nil
	return err
}
