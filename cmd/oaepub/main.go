// Package main provides the oaepub binary entry point.
// oaepub converts open-access journal articles from NLM/JPTS XML
// into EPUB files.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/oaepub/oaepub"
	"github.com/oaepub/oaepub/config"
	"github.com/oaepub/oaepub/images"
)

const (
	Version = "0.1.0"
	appName = "oaepub"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Convert open-access journal articles to EPUB",
		Long: `oaepub converts journal articles tagged per the NLM Journal
Publishing DTD into EPUB files: XHTML content documents, NCX
navigation, an OPF package, and the article's images.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	setup := func() (*config.Config, *slog.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
		logger := newLogger(cfg.Log.Level)
		slog.SetDefault(logger)
		return cfg, logger, nil
	}

	cmd.AddCommand(convertCmd(setup))
	cmd.AddCommand(batchCmd(setup))
	cmd.AddCommand(validateCmd(setup))
	cmd.AddCommand(clearCacheCmd(setup))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

type setupFunc func() (*config.Config, *slog.Logger, error)

func convertCmd(setup setupFunc) *cobra.Command {
	var (
		outputDir    string
		imageSource  string
		noFetch      bool
		keepUnpacked bool
	)

	cmd := &cobra.Command{
		Use:   "convert <article.xml> [article.xml...]",
		Short: "Convert article XML files to EPUB",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			opts := conversionOptions(cfg, logger)
			if outputDir != "" {
				opts.OutputDir = outputDir
			}
			if imageSource != "" {
				opts.Images.SourceDir = imageSource
			}
			if noFetch {
				opts.Images.Fetch = false
			}
			opts.KeepUnpacked = keepUnpacked

			converter := oaepub.NewConverter()
			converter.SetOptions(opts)
			for _, input := range args {
				if _, err := converter.Convert(input); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: next to the input)")
	cmd.Flags().StringVarP(&imageSource, "images", "i", "", "Explicit image directory (\"*\" expands to the input name)")
	cmd.Flags().BoolVar(&noFetch, "no-fetch", false, "Never download images from the publisher")
	cmd.Flags().BoolVar(&keepUnpacked, "keep-unpacked", false, "Keep the expanded EPUB directory")

	return cmd
}

func batchCmd(setup setupFunc) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Convert every article XML file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			entries, err := os.ReadDir(args[0])
			if err != nil {
				return err
			}

			opts := conversionOptions(cfg, logger)
			if outputDir != "" {
				opts.OutputDir = outputDir
			}

			var (
				wg     sync.WaitGroup
				mu     sync.Mutex
				failed int
			)
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xml") {
					continue
				}
				input := filepath.Join(args[0], entry.Name())

				wg.Add(1)
				go func() {
					defer wg.Done()
					converter := oaepub.NewConverter()
					converter.SetOptions(opts)
					if _, err := converter.Convert(input); err != nil {
						logger.Error("conversion failed", "input", input, "error", err)
						mu.Lock()
						failed++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			if failed > 0 {
				return fmt.Errorf("%d article(s) failed to convert", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: next to each input)")

	return cmd
}

func validateCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file> [file...]",
		Short: "Validate article XML files or EPUB files",
		Long: `Validate checks article XML files for the front matter the
converter requires. Files ending in .epub are instead passed to an
external epubcheck executable, configured under output.epubcheck.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			for _, arg := range args {
				if strings.HasSuffix(arg, ".epub") {
					check := exec.Command(cfg.Output.Epubcheck, arg)
					check.Stdout = os.Stdout
					check.Stderr = os.Stderr
					if err := check.Run(); err != nil {
						return fmt.Errorf("epubcheck %s: %w", arg, err)
					}
				} else if err := oaepub.ValidateArticle(arg); err != nil {
					return err
				}
				logger.Info("valid", "file", arg)
			}
			return nil
		},
	}
}

func clearCacheCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Remove all cached article images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if cfg.Images.CacheDir == "" {
				return fmt.Errorf("no cache directory configured")
			}
			if err := os.RemoveAll(cfg.Images.CacheDir); err != nil {
				return err
			}
			logger.Info("cache cleared", "dir", cfg.Images.CacheDir)
			return nil
		},
	}
}

// conversionOptions maps the loaded configuration onto converter options.
func conversionOptions(cfg *config.Config, logger *slog.Logger) oaepub.Options {
	return oaepub.Options{
		OutputDir: cfg.Output.Dir,
		Images: images.Options{
			SourceDir:     cfg.Images.Source,
			InputRelative: cfg.Images.InputRelative,
			CacheDir:      cfg.Images.CacheDir,
			UseCache:      cfg.Images.UseCache,
			StoreCache:    cfg.Images.StoreCache,
			Fetch:         cfg.Images.Fetch,
			Log:           logger,
		},
		Log: logger,
	}
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
