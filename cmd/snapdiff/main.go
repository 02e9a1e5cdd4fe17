package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/koba/snapdiff/internal/config"
	"github.com/koba/snapdiff/internal/database"
	"github.com/koba/snapdiff/internal/diff"
	"github.com/koba/snapdiff/internal/generator"
	"github.com/koba/snapdiff/internal/logging"
	"github.com/koba/snapdiff/internal/naming"
	"github.com/koba/snapdiff/internal/primarykey"
	"github.com/koba/snapdiff/internal/snapshot"
)

var (
	configPath string
	logLevel   string

	tables    []string
	outputDir string
	exclude   []string
	strategy  string
	maxLength int
	workers   int

	dbType string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "snapdiff",
	Short:         "Primary key snapshot and diff tool",
	Long:          `A tool to snapshot primary keys of a mapped schema under identifier length limits, and compare snapshots.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [name]",
	Short: "Create a snapshot",
	Long:  `Create a snapshot of the primary keys and backing indexes of the configured database.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshot,
}

var diffCmd = &cobra.Command{
	Use:   "diff <snapshot1> <snapshot2>",
	Short: "Compare two snapshots",
	Long:  `Compare the primary keys and indexes of two snapshots and display the differences.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <snapshot1> <snapshot2>",
	Short: "Generate migration SQL",
	Long:  `Generate DDL statements to move primary keys and backing indexes from snapshot1 to snapshot2.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runMigrate,
}

var aliasCmd = &cobra.Command{
	Use:   "alias <table> [primary-key-name]",
	Short: "Show the resolved primary key name for a table",
	Long: `Resolve the primary key name of a table the way a snapshot would.
Without a primary key name the legacy 15 character alias of the table is used.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAlias,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to snapdiff.yaml (default: search the working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	for _, cmd := range []*cobra.Command{snapshotCmd, aliasCmd} {
		cmd.Flags().StringVar(&strategy, "strategy", "", "Naming strategy: "+strings.Join(naming.Names(), ", "))
		cmd.Flags().IntVar(&maxLength, "max-length", 0, "Identifier length limit (default 63)")
	}

	snapshotCmd.Flags().StringSliceVar(&tables, "tables", nil, "Comma-separated list of tables to snapshot (default: all tables)")
	snapshotCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for snapshots (default ./snapshots)")
	snapshotCmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Object types to leave out: table, column, primary-key, index")
	snapshotCmd.Flags().IntVar(&workers, "workers", 0, "Tables processed in parallel (default 4)")

	migrateCmd.Flags().StringVar(&dbType, "db-type", "", "Target database type (default: from snapshot metadata)")

	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(aliasCmd)
}

// loadSettings reads the config file and applies command-line overrides
func loadSettings(cmd *cobra.Command) (*config.Config, hclog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("strategy") {
		cfg.Naming.Strategy = strategy
	}
	if flags.Changed("max-length") {
		cfg.Naming.MaxLength = maxLength
	}
	if flags.Changed("output-dir") {
		cfg.Snapshot.Dir = outputDir
	}
	if flags.Changed("exclude") {
		cfg.Snapshot.Exclude = exclude
	}
	if flags.Changed("workers") {
		cfg.Snapshot.Workers = workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return cfg, logging.New(cfg.Log.Level, cmd.ErrOrStderr()), nil
}

func newResolver(cfg *config.Config, log hclog.Logger) (*primarykey.Resolver, error) {
	s, err := naming.New(cfg.Naming.Strategy, cfg.Naming.MaxLength)
	if err != nil {
		return nil, err
	}
	return primarykey.NewResolver(primarykey.Config{
		Strategy:  s,
		Logger:    logging.Resolver(log),
		MaxLength: cfg.Naming.MaxLength,
	}), nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadSettings(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	control, err := snapshot.ParseControl(cfg.Snapshot.Exclude)
	if err != nil {
		return err
	}

	resolver, err := newResolver(cfg, log)
	if err != nil {
		return err
	}

	// Load database configuration
	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewDatabase(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	ctx := cmd.Context()
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	logging.DB(log).Info("connected", "type", dbConfig.Type, "host", dbConfig.Host, "database", dbConfig.Database)

	// Generate snapshot filename
	var filename string
	if len(args) > 0 {
		filename = args[0]
		if !strings.HasSuffix(filename, ".db") {
			filename += ".db"
		}
	} else {
		timestamp := time.Now().Format("2006-01-02-15-04-05")
		filename = fmt.Sprintf("%s-%s.db", dbConfig.Database, timestamp)
	}
	outputPath := filepath.Join(cfg.Snapshot.Dir, filename)

	builder := snapshot.NewBuilder(db, control, logging.Snapshot(log), cfg.Snapshot.Workers,
		primarykey.NewGenerator(resolver, db))

	fmt.Fprintf(cmd.OutOrStdout(), "Creating snapshot: %s\n", outputPath)
	snap, err := builder.Build(ctx, tables)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	snap.Metadata["db_type"] = dbConfig.Type
	snap.Metadata["max_length"] = fmt.Sprint(resolver.MaxLength())
	if cfg.Naming.Strategy != "" {
		snap.Metadata["strategy"] = cfg.Naming.Strategy
	}

	if err := snapshot.Save(snap, outputPath); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot created successfully: %s (%d tables, %d failed)\n",
		outputPath, len(snap.Tables), len(snap.Failures))
	return nil
}

func loadPair(args []string) (*snapshot.Snapshot, *snapshot.Snapshot, error) {
	snap1, err := snapshot.Load(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot1: %w", err)
	}

	snap2, err := snapshot.Load(args[1])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot2: %w", err)
	}

	return snap1, snap2, nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	snap1, snap2, err := loadPair(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Comparing %s and %s ===\n\n", filepath.Base(args[0]), filepath.Base(args[1]))
	diff.Display(out, diff.Compare(snap1, snap2))

	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	snap1, snap2, err := loadPair(args)
	if err != nil {
		return err
	}

	target := dbType
	if target == "" {
		target = snap2.Metadata["db_type"]
	}
	if target == "" {
		target = "mysql"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "-- Migration SQL from %s to %s\n", filepath.Base(args[0]), filepath.Base(args[1]))
	fmt.Fprintf(out, "-- Generated at: %s\n\n", time.Now().Format(time.RFC3339))
	fmt.Fprintln(out, generator.GenerateSQL(diff.Compare(snap1, snap2), target))

	return nil
}

func runAlias(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadSettings(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	resolver, err := newResolver(cfg, log)
	if err != nil {
		return err
	}

	table := args[0]
	pkName := primarykey.LegacyAlias().AliasFor(table)
	if len(args) > 1 {
		pkName = args[1]
	}

	res := resolver.Resolve(table, pkName)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "table:    %s\n", res.Table)
	fmt.Fprintf(out, "original: %s\n", res.Original)
	fmt.Fprintf(out, "name:     %s\n", res.Name)
	fmt.Fprintf(out, "index:    %s\n", primarykey.BackingIndexPrefix+res.Name)
	fmt.Fprintf(out, "outcome:  %s\n", res.Outcome)

	return nil
}
