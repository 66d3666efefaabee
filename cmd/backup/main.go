package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bably/internal/config"
	"bably/internal/database"
	"bably/internal/logger"
	"bably/internal/service"
	"bably/migrations"
)

func main() {
	cobra.CheckErr(newRootCmd().Execute())
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export and import the Bably database as JSON",
		Long: `backup copies every Bably table to and from a single JSON document.

The database is selected with DB_TYPE, DB_PATH and DATABASE_URL, read from
the environment or a .env file.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(newExportCmd(), newImportCmd())
	return cmd
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the database to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			backupService, logg, closeDB, err := openBackup(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			if output == "" {
				output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
			}
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()

			logg.Infow("Exporting database", "file", output)
			if err := backupService.ExportToWriter(cmd.Context(), f); err != nil {
				return err
			}

			if info, err := f.Stat(); err == nil {
				logg.Infof("Export complete! File size: %.2f MB", float64(info.Size())/1024/1024)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "file", "f", "", "output file (default backup_YYYYMMDD_HHMMSS.json)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var (
		input string
		clear bool
		yes   bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON backup into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", input, err)
			}
			defer f.Close()

			backupService, logg, closeDB, err := openBackup(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			if clear {
				if !yes && !confirm(cmd, "WARNING: This will delete all existing data. Type 'yes' to confirm: ") {
					logg.Info("Import cancelled")
					return nil
				}
				logg.Info("Clearing existing data...")
				if err := backupService.ClearAll(cmd.Context()); err != nil {
					return err
				}
			}

			logg.Infow("Importing database", "file", input)
			return backupService.ImportFromReader(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVarP(&input, "file", "f", "", "backup file to import")
	cmd.Flags().BoolVar(&clear, "clear", false, "delete existing data before import (destructive)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the --clear confirmation prompt")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// openBackup connects using only the database settings and brings the
// schema up to date.
func openBackup(cmd *cobra.Command) (*service.BackupService, *zap.SugaredLogger, func(), error) {
	cfg := config.Load()
	logg := logger.New(cfg.LogLevel, true)

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.RunMigrations(cmd.Context(), migrations.FS, logg); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	closeDB := func() {
		db.Close()
		_ = logg.Sync()
	}
	return service.NewBackupService(db, logg), logg, closeDB, nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}
