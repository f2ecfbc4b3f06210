package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"steam4all/internal/config"
	"steam4all/internal/database"
	"steam4all/internal/logger"
	"steam4all/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	statsCmd := flag.NewFlagSet("stats", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: progress_YYYYMMDD_HHMMSS.json)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Initialize database
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if _, err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	backupService := service.NewBackupService(db, log)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(ctx, log, backupService, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(ctx, log, backupService, *importInput)

	case "stats":
		statsCmd.Parse(os.Args[2:])
		handleStats(ctx, log, backupService)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, log *logger.Logger, backupService *service.BackupService, outputPath string) {
	// Generate default filename if not provided
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("progress_%s.json", timestamp)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal("failed to create output directory", "dir", dir, "error", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		log.Fatal("failed to create output file", "path", outputPath, "error", err)
	}
	defer f.Close()

	log.Info("exporting progress", "path", outputPath)
	data, err := backupService.Export(ctx, f)
	if err != nil {
		log.Fatal("export failed", "error", err)
	}

	log.Info("export complete", "learners", len(data.Progress), "attempts", len(data.Attempts))
}

func handleImport(ctx context.Context, log *logger.Logger, backupService *service.BackupService, inputPath string) {
	f, err := os.Open(inputPath)
	if err != nil {
		log.Fatal("failed to open input file", "path", inputPath, "error", err)
	}
	defer f.Close()

	log.Info("importing progress", "path", inputPath)
	stats, err := backupService.Import(ctx, f)
	if err != nil {
		log.Fatal("import failed", "error", err)
	}

	log.Info("import complete", "learners", stats.Progress, "attempts", stats.Attempts)
}

func handleStats(ctx context.Context, log *logger.Logger, backupService *service.BackupService) {
	stats, err := backupService.Stats(ctx)
	if err != nil {
		log.Fatal("failed to read stats", "error", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LESSON\tRUNS\tPASSED")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%d\n", s.LessonID, s.Attempts, s.Successes)
	}
	w.Flush()
}

func printUsage() {
	fmt.Println("Learner progress tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  progress export [-output file.json]   Export stored progress and run history")
	fmt.Println("  progress import -input file.json      Import progress, replacing each learner's history")
	fmt.Println("  progress stats                        Show runs and passes per lesson")
}
