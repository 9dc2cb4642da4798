package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"pedigree/internal/config"
	"pedigree/internal/errors"
	"pedigree/internal/index"
	"pedigree/internal/loader"
	"pedigree/internal/logger"
	"pedigree/internal/storage"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

const (
	sourceGed    = "ged"
	sourceDB     = "db"
	sourceExport = "export"
	sourceRemote = "remote"
)

var (
	rootCmd = &cobra.Command{
		Use:           "pedigree",
		Short:         "Parse family records and explore relationships",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	cfg        *config.Config
	configPath string
	dbPath     string
	gedPath    string
	source     string
	jsonLogs   bool
	debugLogs  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err.Error())
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.Println(hint)
		}
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "pedigree.yaml", "Path to the YAML config file")
	flags.StringVarP(&dbPath, "db", "d", "", "Path to the SQLite person store (overrides storage.db_path)")
	flags.StringVarP(&gedPath, "ged", "g", "", "Path to the pedigree record file (overrides source.ged_file)")
	flags.StringVar(&source, "source", "", "Where people are loaded from: ged, db, export or remote")
	flags.BoolVar(&jsonLogs, "json", false, "Emit logs as JSON")
	flags.BoolVar(&debugLogs, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(familyCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(relateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads config, applies flag overrides and starts logging.
func setup(cmd *cobra.Command) error {
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Storage.DBPath = dbPath
	}
	if flags.Changed("ged") {
		cfg.Source.GedFile = gedPath
	}
	if flags.Changed("json") {
		cfg.Log.JSON = jsonLogs
	}
	if flags.Changed("debug") {
		cfg.Log.Debug = debugLogs
	}

	return logger.Initialize(cfg.Log.JSON, cfg.Log.Debug)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// activeSource picks the --source flag, then remote when a remote URL is
// configured, then the record file.
func activeSource() (string, error) {
	switch source {
	case sourceGed, sourceDB, sourceExport, sourceRemote:
		return source, nil
	case "":
		if cfg.Resolver.RemoteBaseURL != "" {
			return sourceRemote, nil
		}
		return sourceGed, nil
	}
	return "", errors.WithHint(errors.Wrapf(errors.ErrInvalidRequest, "unknown source %q", source),
		"use one of: ged, db, export, remote")
}

// openLoader returns a loader for the active source, the ids it knows in
// order, and a cleanup func.
func openLoader(ctx context.Context) (loader.Loader, []string, func(), error) {
	noop := func() {}
	src, err := activeSource()
	if err != nil {
		return nil, nil, noop, err
	}
	log := logger.Named("loader")

	switch src {
	case sourceDB:
		store, err := storage.NewSQLiteStore(cfg.Storage.DBPath)
		if err != nil {
			return nil, nil, noop, errors.WithHint(err, "run `pedigree import` to create the database")
		}
		ids, err := store.ListIDs(ctx)
		if err != nil {
			store.Close()
			return nil, nil, noop, err
		}
		log.Debugw("opened person store", logger.FieldPath, cfg.Storage.DBPath, logger.FieldCount, len(ids))
		return store, ids, func() { store.Close() }, nil

	case sourceExport:
		dir := loader.NewDirLoader(cfg.Export.Dir)
		m, err := dir.LoadIndex()
		if err != nil {
			return nil, nil, noop, errors.WithHint(err, "run `pedigree export` first")
		}
		return dir, m.AllIDs, noop, nil

	case sourceRemote:
		if cfg.Resolver.RemoteBaseURL == "" {
			return nil, nil, noop, errors.WithHint(errors.New("no remote base URL"),
				"set resolver.remote_base_url or PEDIGREE_REMOTE_URL")
		}
		remote := loader.NewHTTPLoader(cfg.Resolver.RemoteBaseURL, nil)
		m, err := remote.LoadIndex(ctx)
		if err != nil {
			return nil, nil, noop, err
		}
		return remote, m.AllIDs, noop, nil
	}

	store, err := index.BuildStore(cfg.Source.GedFile)
	if err != nil {
		return nil, nil, noop, err
	}
	log.Debugw("parsed records",
		logger.FieldPath, cfg.Source.GedFile,
		logger.FieldCount, store.NumIndividuals(),
	)
	return loader.NewMemoryLoader(store), store.IndividualIDs(), noop, nil
}

func printJSON(v any) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
