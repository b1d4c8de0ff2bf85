// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-constellation/internal/config"
	"github.com/naka-gawa/github-constellation/internal/gateway"
	"github.com/naka-gawa/github-constellation/internal/usecase"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "github-constellation <repo-url>",
		Short: "Ranks the repositories most starred by a repository's stargazers.",
		Long: `github-constellation lists the stargazers of a GitHub repository, fetches the
repositories each of them has starred and prints the most frequently co-starred
repositories. A token must be provided in the GITHUB_TOKEN environment variable.`,
		Example:       "  github-constellation https://github.com/spf13/cobra --limit 50",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	defaults := config.Default()
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	cmd.Flags().String("config", "", "Path to a YAML config file")
	cmd.Flags().Int("limit", defaults.Limit, "Limit the number of stargazers and starred repos. Use 0 for no limit.")
	cmd.Flags().Int("top", defaults.Top, "Number of repositories to rank")
	cmd.Flags().Duration("delay", defaults.Delay, "Pause between stargazers")
	cmd.Flags().Duration("timeout", defaults.Timeout, "HTTP request timeout")
	cmd.Flags().String("api-url", defaults.APIURL, "GitHub REST API base URL")
	cmd.Flags().String("graphql-url", "", "GitHub GraphQL endpoint (default <api-url>/graphql)")
	cmd.Flags().Bool("graphql", false, "Use the GraphQL API instead of REST")
	cmd.Flags().Bool("wait-rate-limit", false, "Sleep through secondary rate limits instead of failing")
	cmd.Flags().Bool("exclude-self", false, "Leave the analysed repository out of the ranking")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, repoURL string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.Debugw("configuration loaded",
		"limit", cfg.Limit,
		"top", cfg.Top,
		"delay", cfg.Delay,
		"api_url", cfg.APIURL,
		"graphql", cfg.GraphQL)

	// Inject dependencies and run the main business logic.
	fetcher, err := gateway.New(gateway.Options{
		Token:         cfg.Token,
		APIURL:        cfg.APIURL,
		GraphQLURL:    cfg.GraphQLURL,
		Timeout:       cfg.Timeout,
		GraphQL:       cfg.GraphQL,
		WaitRateLimit: cfg.WaitRateLimit,
	}, logger)
	if err != nil {
		return errors.Wrap(err, "failed to create GitHub gateway")
	}
	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	// Progress goes to stderr when stdout carries the JSON report.
	progress := out
	if asJSON {
		progress = cmd.ErrOrStderr()
	}
	aggregator := usecase.NewAggregator(fetcher, logger, progress, usecase.Options{
		Limit:       cfg.Limit,
		Top:         cfg.Top,
		Delay:       cfg.Delay,
		ExcludeSelf: cfg.ExcludeSelf,
	})

	report, err := aggregator.Aggregate(context.Background(), repoURL)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(out, report)
	}
	writeText(out, report, cfg.Top)
	return nil
}

// loadConfig reads the token, then layers explicitly set flags over the
// config file and defaults. A missing credential is reported before the
// config file is touched.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	token, err := config.TokenFromEnv()
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	cfg.Token = token

	if flags.Changed("limit") {
		cfg.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("top") {
		cfg.Top, _ = flags.GetInt("top")
	}
	if flags.Changed("delay") {
		cfg.Delay, _ = flags.GetDuration("delay")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("api-url") {
		cfg.APIURL, _ = flags.GetString("api-url")
	}
	if flags.Changed("graphql-url") {
		cfg.GraphQLURL, _ = flags.GetString("graphql-url")
	}
	if flags.Changed("graphql") {
		cfg.GraphQL, _ = flags.GetBool("graphql")
	}
	if flags.Changed("wait-rate-limit") {
		cfg.WaitRateLimit, _ = flags.GetBool("wait-rate-limit")
	}
	if flags.Changed("exclude-self") {
		cfg.ExcludeSelf, _ = flags.GetBool("exclude-self")
	}
	return cfg, cfg.Validate()
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	if !verbose {
		return zap.NewNop().Sugar(), nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}
	return logger.Sugar(), nil
}
