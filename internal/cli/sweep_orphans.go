package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/damlink/damlink/internal/config"
	"github.com/damlink/damlink/internal/database"
	"github.com/damlink/damlink/internal/database/records"
	"github.com/damlink/damlink/internal/tasks"
)

// SweepOrphansCommand removes stored binaries no record references anymore,
// without waiting for the scheduled cleanup.
type SweepOrphansCommand struct {
	DatabasePath string
	StorageDir   string
}

// NewSweepOrphansCommand creates a new SweepOrphansCommand
func NewSweepOrphansCommand() *SweepOrphansCommand {
	return &SweepOrphansCommand{}
}

// ParseFlags parses command line flags
func (cmd *SweepOrphansCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sweep-orphans", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.StorageDir, "storage", "./files", "Root directory of stored binaries")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sweep-orphans [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete stored files that no content record references.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the command
func (cmd *SweepOrphansCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	baseDir, err := filepath.Abs(cmd.StorageDir)
	if err != nil {
		return fmt.Errorf("resolve storage dir: %w", err)
	}

	repo := records.NewRepository(db.DB)
	processor := tasks.SweepOrphanBinariesProcessor(repo, baseDir)

	return processor(context.Background(), tasks.SweepOrphanBinariesTask{})
}
