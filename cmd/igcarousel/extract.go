package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"igcarousel/pkg/auth"
	"igcarousel/pkg/browser"
	"igcarousel/pkg/config"
	"igcarousel/pkg/extractor"
	"igcarousel/pkg/instagram"
	"igcarousel/pkg/logger"
	"igcarousel/pkg/ui"
)

var (
	expectedCount int
	downloadFlag  bool
	outputDir     string
	concurrent    int
	rateLimit     int
	accountName   string
	contentHash   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <shortcode>",
	Short: "Extract the image set of a post",
	Long: `Extract the main-post image URLs of an Instagram post.

The argument may be a bare shortcode or a full post URL. For carousel
posts, pass --count with the number of images the post holds; the
navigator steps through the carousel until that many distinct images
are collected.

Valid Instagram session cookies must be available, either stored via
'igcarousel auth login' or set through IGCAROUSEL_SESSION_ID and
IGCAROUSEL_CSRF_TOKEN.`,
	Example: `  # Single-image post
  igcarousel extract C1a2B3c4D5e

  # Eight-image carousel, download the results
  igcarousel extract C1a2B3c4D5e --count 8 --download

  # Full URL works too
  igcarousel extract https://www.instagram.com/p/C1a2B3c4D5e/

  # Enable the content-hash dedup pass
  igcarousel extract C1a2B3c4D5e --count 8 --content-hash`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runExtract(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().IntVarP(&expectedCount, "count", "n", 1, "expected number of images in the post")
	extractCmd.Flags().BoolVarP(&downloadFlag, "download", "d", false, "download the extracted images")
	extractCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for downloads")
	extractCmd.Flags().IntVar(&concurrent, "concurrent", 3, "number of concurrent downloads")
	extractCmd.Flags().IntVar(&rateLimit, "rate-limit", 60, "requests per minute")
	extractCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	extractCmd.Flags().BoolVar(&contentHash, "content-hash", false, "fetch and hash images to catch URL-pattern dedup misses")
}

func runExtract(cmd *cobra.Command, args []string) {
	shortcode := instagram.SanitizeShortcode(strings.TrimSpace(args[0]))

	cfg := loadConfig()
	applyExtractFlags(cfg)

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()

	resolveSession(cfg)

	ui.PrintInfo("Target post", shortcode)

	e, err := extractor.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize extractor", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver, err := browser.NewDriver(ctx, instagram.PostURL(shortcode), cfg.Navigation, e.Learning(), log)
	if err != nil {
		log.WithError(err).Error("Failed to open post page")
		ui.PrintError("Failed to open post page", err.Error())
		os.Exit(1)
	}
	defer driver.Close()

	result, err := e.Extract(ctx, shortcode, driver, extractor.Options{
		ExpectedCount: expectedCount,
		Download:      downloadFlag,
	})
	if err != nil {
		log.WithError(err).WithField("shortcode", shortcode).Error("Extraction failed")
		ui.PrintError("Extraction failed", err.Error())
		os.Exit(1)
	}

	if result.Partial {
		ui.PrintWarning(fmt.Sprintf("Collected %d of %d expected images", len(result.URLs), result.Expected))
	} else {
		ui.PrintSuccess(fmt.Sprintf("Extracted %d image(s)", len(result.URLs)))
	}

	for _, url := range result.URLs {
		fmt.Println(url)
	}

	if downloadFlag {
		ui.PrintInfo("Downloaded", fmt.Sprintf("%d file(s)", len(result.Files)))
		for _, path := range result.Files {
			ui.PrintInfo("  saved", path)
		}
	}
}

// loadConfig builds configuration from defaults, an optional config
// file, and environment variables.
func loadConfig() *config.Config {
	cfg := config.DefaultConfig()

	if err := cfg.LoadFromFile(configFile); err != nil {
		ui.PrintError("Failed to load configuration file", err.Error())
		os.Exit(1)
	}
	if err := cfg.LoadFromEnv(); err != nil {
		ui.PrintError("Failed to load environment configuration", err.Error())
		os.Exit(1)
	}

	if logLevel != "info" {
		cfg.Logging.Level = logLevel
	}

	return cfg
}

func applyExtractFlags(cfg *config.Config) {
	if outputDir != "" {
		cfg.Output.BaseDirectory = outputDir
	}
	if concurrent != 3 {
		cfg.Download.ConcurrentDownloads = concurrent
	}
	if rateLimit != 60 {
		cfg.RateLimit.RequestsPerMinute = rateLimit
	}
	if contentHash {
		cfg.Dedup.ContentHash = true
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Invalid configuration", err.Error())
		os.Exit(1)
	}
}

// resolveSession fills the session cookies into the config, preferring
// an explicitly named account, then config/env values, then the
// default stored session.
func resolveSession(cfg *config.Config) {
	log := logger.GetLogger()

	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	var session *auth.Session

	if accountName != "" {
		session, err = manager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Stored accounts", "Use 'igcarousel auth list' to see stored accounts")
			os.Exit(1)
		}
	} else if cfg.Instagram.SessionID != "" && cfg.Instagram.CSRFToken != "" {
		log.Info("Using session from configuration")
	} else {
		session, err = manager.RetrieveDefault()
		if err != nil {
			log.Error("No session found")
			ui.PrintError("No Instagram session found", "")
			fmt.Println("\nTo store session cookies securely, run:")
			fmt.Println("  igcarousel auth login")
			fmt.Println("\nOr set environment variables:")
			fmt.Println("  export IGCAROUSEL_SESSION_ID=your_session_id")
			fmt.Println("  export IGCAROUSEL_CSRF_TOKEN=your_csrf_token")
			os.Exit(1)
		}
	}

	if session != nil {
		cfg.Instagram.SessionID = session.SessionID
		cfg.Instagram.CSRFToken = session.CSRFToken
		if session.UserAgent != "" {
			cfg.Instagram.UserAgent = session.UserAgent
		}
		log.WithField("account", session.Username).Info("Using stored session")
		ui.PrintInfo("Using account", session.Username)
	}
}
