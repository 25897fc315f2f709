package tracker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/elstrm2/NutritionTracker/internal/app"
	"github.com/elstrm2/NutritionTracker/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database backups",
}

var (
	backupOut           string
	backupDir           string
	backupRecipient     string
	backupRecipientFile string
	restoreFile         string
	restoreIdentity     string
	restoreForce        bool
)

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create database backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		recipient, err := resolveRecipient()
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app.App) error {
			path, err := sqlitePath(a.Config())
			if err != nil {
				return err
			}
			out := backupOut
			if out == "" {
				dir := backupDir
				if dir == "" {
					dir = app.DefaultBackupDir(path)
				}
				out = filepath.Join(dir, fmt.Sprintf("tracker-%s.db", a.Tracker().Now().Format("20060102-150405")))
			}
			info, err := a.Backup(cmd.Context(), out, recipient)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created backup: %s\n", info.Path)
			fmt.Fprintf(cmd.OutOrStdout(), "Checksum: %s\n", info.Checksum)
			if info.Encrypted {
				fmt.Fprintln(cmd.OutOrStdout(), "Encrypted: yes")
			}
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := backupDir
		if dir == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path, err := sqlitePath(cfg)
			if err != nil {
				return err
			}
			dir = app.DefaultBackupDir(path)
		}
		items, err := backup.List(dir)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "FILE\tSIZE\tCREATED\tENCRYPTED\tCHECKSUM")
		for _, it := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%t\t%s\n", it.Path, it.SizeBytes, it.CreatedAt.Format(time.RFC3339), it.Encrypted, it.Checksum)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore database from backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		if restoreFile == "" {
			return fmt.Errorf("--file is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path, err := sqlitePath(cfg)
		if err != nil {
			return err
		}
		if err := backup.Restore(restoreFile, path, restoreIdentity, restoreForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored backup from %s\n", restoreFile)
		return nil
	},
}

// resolveRecipient returns the age public key from --recipient or --recipient-file.
func resolveRecipient() (string, error) {
	if backupRecipient != "" && backupRecipientFile != "" {
		return "", fmt.Errorf("use either --recipient or --recipient-file, not both")
	}
	if backupRecipientFile == "" {
		return backupRecipient, nil
	}
	b, err := os.ReadFile(backupRecipientFile)
	if err != nil {
		return "", fmt.Errorf("read recipient file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd)

	backupCreateCmd.Flags().StringVar(&backupOut, "out", "", "Backup output file path")
	backupCreateCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (used when --out is empty)")
	backupCreateCmd.Flags().StringVar(&backupRecipient, "recipient", "", "age public key to encrypt the backup to")
	backupCreateCmd.Flags().StringVar(&backupRecipientFile, "recipient-file", "", "File containing the age public key")
	backupListCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (default: alongside DB under backups/)")
	backupRestoreCmd.Flags().StringVar(&restoreFile, "file", "", "Backup .db or .db.age file path")
	backupRestoreCmd.Flags().StringVar(&restoreIdentity, "identity", "", "age identity file for encrypted backups")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite existing DB if present")
}
