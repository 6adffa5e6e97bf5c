package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/repo-miner/internal/aggregator"
	"github.com/kurihiro0119/repo-miner/internal/collector"
	"github.com/kurihiro0119/repo-miner/internal/config"
	"github.com/kurihiro0119/repo-miner/internal/domain"
	"github.com/kurihiro0119/repo-miner/internal/normalizer"
	"github.com/kurihiro0119/repo-miner/internal/storage"
	"github.com/kurihiro0119/repo-miner/internal/storage/csvfile"
	"github.com/kurihiro0119/repo-miner/internal/storage/postgres"
	"github.com/kurihiro0119/repo-miner/internal/storage/sqlite"
)

var (
	repoName    string
	maxCount    int
	outPath     string
	issueState  string
	storeFlag   bool
	commitsPath string
	issuesPath  string
	outputJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "repo-miner",
	Short: "Fetch GitHub commits/issues and summarize them",
	Long: `A CLI tool for mining a GitHub repository.

repo-miner fetches commit and issue metadata, normalizes it into flat
CSV tables and computes summary statistics (top contributors, issue
close rate, average resolution time) over the persisted tables.`,
}

var fetchCommitsCmd = &cobra.Command{
	Use:   "fetch-commits",
	Short: "Fetch commits and save to CSV",
	Long:  `Fetch commit metadata for a repository, normalize it and save it as a CSV table.`,
	RunE:  runFetchCommits,
}

var fetchIssuesCmd = &cobra.Command{
	Use:   "fetch-issues",
	Short: "Fetch issues and save to CSV",
	Long:  `Fetch issue metadata for a repository (pull requests excluded), normalize it and save it as a CSV table.`,
	RunE:  runFetchIssues,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize fetched commit and issue tables",
	Long:  `Compute top committers, issue close rate and average open duration from previously fetched CSV tables.`,
	RunE:  runSummary,
}

func init() {
	fetchCommitsCmd.Flags().StringVar(&repoName, "repo", "", "repository in owner/repo format (required)")
	fetchCommitsCmd.Flags().IntVar(&maxCount, "max", 0, "max number of commits to fetch (0 means all)")
	fetchCommitsCmd.Flags().StringVar(&outPath, "out", "", "path to output commits CSV (required)")
	fetchCommitsCmd.Flags().BoolVar(&storeFlag, "store", false, "also mirror records into configured storage")
	fetchCommitsCmd.MarkFlagRequired("repo")
	fetchCommitsCmd.MarkFlagRequired("out")

	fetchIssuesCmd.Flags().StringVar(&repoName, "repo", "", "repository in owner/repo format (required)")
	fetchIssuesCmd.Flags().IntVar(&maxCount, "max", 0, "max number of raw issues to scan (0 means all)")
	fetchIssuesCmd.Flags().StringVar(&outPath, "out", "", "path to output issues CSV (required)")
	fetchIssuesCmd.Flags().StringVar(&issueState, "state", "all", "issue state filter (open, closed, all)")
	fetchIssuesCmd.Flags().BoolVar(&storeFlag, "store", false, "also mirror records into configured storage")
	fetchIssuesCmd.MarkFlagRequired("repo")
	fetchIssuesCmd.MarkFlagRequired("out")

	summaryCmd.Flags().StringVar(&commitsPath, "commits", "", "path to commits CSV (required)")
	summaryCmd.Flags().StringVar(&issuesPath, "issues", "", "path to issues CSV (required)")
	summaryCmd.Flags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	summaryCmd.MarkFlagRequired("commits")
	summaryCmd.MarkFlagRequired("issues")

	rootCmd.AddCommand(fetchCommitsCmd)
	rootCmd.AddCommand(fetchIssuesCmd)
	rootCmd.AddCommand(summaryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFetchCommits(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateToken(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	owner, repo, err := splitRepo(repoName)
	if err != nil {
		return err
	}

	ctx := context.Background()
	coll := collector.NewGitHubCollector(cfg.GitHubToken)
	started := time.Now()

	fmt.Printf("Fetching commits for %s/%s...\n", owner, repo)
	raws, err := coll.FetchCommits(ctx, owner, repo, maxCount)
	if err != nil {
		return fmt.Errorf("failed to fetch commits: %w", err)
	}

	records, err := normalizer.NormalizeCommits(raws, maxCount)
	if err != nil {
		return fmt.Errorf("failed to normalize commits: %w", err)
	}

	if err := csvfile.WriteCommits(outPath, records); err != nil {
		return err
	}
	fmt.Printf("Saved %d commits to %s\n", len(records), outPath)

	if storeFlag {
		return mirrorCommits(ctx, cfg, owner, repo, records, started)
	}
	return nil
}

func runFetchIssues(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateToken(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if issueState != "open" && issueState != "closed" && issueState != "all" {
		return fmt.Errorf("invalid --state %q: must be open, closed or all", issueState)
	}

	owner, repo, err := splitRepo(repoName)
	if err != nil {
		return err
	}

	ctx := context.Background()
	coll := collector.NewGitHubCollector(cfg.GitHubToken)
	started := time.Now()

	fmt.Printf("Fetching issues for %s/%s (state=%s)...\n", owner, repo, issueState)
	raws, err := coll.FetchIssues(ctx, owner, repo, issueState, maxCount)
	if err != nil {
		return fmt.Errorf("failed to fetch issues: %w", err)
	}

	records, err := normalizer.NormalizeIssues(raws, maxCount)
	if err != nil {
		return fmt.Errorf("failed to normalize issues: %w", err)
	}
	if len(records) == 0 {
		if len(raws) > 0 {
			fmt.Println("No issues among the scanned records (pull requests are excluded)")
		} else {
			fmt.Println("No issues found")
		}
	}

	if err := csvfile.WriteIssues(outPath, records); err != nil {
		return err
	}
	fmt.Printf("Saved %d issues to %s\n", len(records), outPath)

	if storeFlag {
		return mirrorIssues(ctx, cfg, owner, repo, records, started)
	}
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	commits, err := csvfile.ReadCommits(commitsPath)
	if err != nil {
		return fmt.Errorf("failed to load commits: %w", err)
	}
	issues, err := csvfile.ReadIssues(issuesPath)
	if err != nil {
		return fmt.Errorf("failed to load issues: %w", err)
	}

	report, err := aggregator.Summarize(commits, issues)
	if err != nil {
		return fmt.Errorf("failed to summarize: %w", err)
	}

	if outputJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printReport(report)
	return nil
}

func printReport(report *domain.SummaryReport) {
	fmt.Println("\nTop Committers:")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Author", "Commits"})
	for _, cc := range report.TopCommitters {
		table.Append([]string{cc.Author, strconv.Itoa(cc.Commits)})
	}
	table.Render()

	avg := "NaN"
	if report.HasAverageOpenDuration() {
		avg = strconv.FormatFloat(report.AverageOpenDurationDays, 'f', 2, 64)
	}

	fmt.Println("\nIssue Statistics:")
	table = tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Close Rate", strconv.FormatFloat(report.IssueCloseRate, 'f', 2, 64)})
	table.Append([]string{"Avg Open Duration (days)", avg})
	table.Render()
}

func mirrorCommits(ctx context.Context, cfg *config.Config, owner, repo string, records []domain.CommitRecord, started time.Time) error {
	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	if err := store.SaveCommits(ctx, owner, repo, records); err != nil {
		return fmt.Errorf("failed to store commits: %w", err)
	}
	run := &domain.FetchRun{
		ID:         uuid.New().String(),
		Owner:      owner,
		Repo:       repo,
		Kind:       domain.FetchKindCommits,
		Records:    len(records),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record fetch run: %w", err)
	}
	fmt.Printf("Mirrored %d commits into %s storage\n", len(records), cfg.StorageType)
	return nil
}

func mirrorIssues(ctx context.Context, cfg *config.Config, owner, repo string, records []domain.IssueRecord, started time.Time) error {
	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	if err := store.SaveIssues(ctx, owner, repo, records); err != nil {
		return fmt.Errorf("failed to store issues: %w", err)
	}
	run := &domain.FetchRun{
		ID:         uuid.New().String(),
		Owner:      owner,
		Repo:       repo,
		Kind:       domain.FetchKindIssues,
		Records:    len(records),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record fetch run: %w", err)
	}
	fmt.Printf("Mirrored %d issues into %s storage\n", len(records), cfg.StorageType)
	return nil
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	default:
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	}
}

func splitRepo(full string) (string, string, error) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid --repo %q: expected owner/repo format", full)
	}
	return parts[0], parts[1], nil
}
