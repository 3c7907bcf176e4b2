package seed

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"user-management-service/internal/config"
	"user-management-service/internal/database"
	"user-management-service/internal/tools/common"
)

type options struct {
	envFile string
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database migration and seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply migrations and the bootstrap admin seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := apply(opts)
			report(opts, "seed apply", details, err)
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := dryRun(opts)
			report(opts, "seed dry-run", details, err)
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func apply(opts *options) ([]string, error) {
	cfg, db, err := loadConfigDB(opts.envFile)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	seedReport, err := database.Seed(db, cfg)
	if err != nil {
		return nil, err
	}
	details := []string{"schema migrated"}
	switch {
	case seedReport.AdminCreated:
		details = append(details, "bootstrap admin created: "+seedReport.AdminNickname)
	case seedReport.AdminNickname != "":
		details = append(details, "bootstrap admin already present: "+seedReport.AdminNickname)
	default:
		details = append(details, "no bootstrap admin configured")
	}
	return details, nil
}

func dryRun(opts *options) ([]string, error) {
	if err := common.LoadEnvFile(opts.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	details := []string{"would migrate tables: users, audit_logs"}
	if cfg.BootstrapAdminNickname != "" {
		details = append(details, "would ensure bootstrap admin: "+cfg.BootstrapAdminNickname)
	} else {
		details = append(details, "no bootstrap admin configured, seed would be a no-op")
	}
	return details, nil
}

func report(opts *options, title string, details []string, err error) {
	if opts.ci {
		common.PrintCIResult(err == nil, title, details, err)
		return
	}
	common.PrintResult(title, details, err)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
