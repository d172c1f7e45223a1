package main

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jonathan/career-pilot/internal/agent"
	"github.com/jonathan/career-pilot/internal/llm"
	"github.com/jonathan/career-pilot/internal/observability"
	"github.com/jonathan/career-pilot/internal/pipeline"
	"github.com/jonathan/career-pilot/internal/types"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find job leads for a profile and optionally analyze the best ones",
	Long: `Runs one discovery for the given title and skills, prints the leads that pass the filters and,
with --analyze-top, runs deep analyses of the highest scoring leads in parallel.

Skills are given as name or name:level, e.g. --skill Go:Expert --skill SQL.`,
	RunE: runDiscoverCmd,
}

var (
	discoverTitle          string
	discoverSkills         []string
	discoverLocation       string
	discoverMinScore       float64
	discoverQuery          string
	discoverFilterLocation string
	discoverAnalyzeTop     int
	discoverOut            string
)

func init() {
	discoverCmd.Flags().StringVarP(&discoverTitle, "title", "t", "", "Target job title (required)")
	discoverCmd.Flags().StringArrayVarP(&discoverSkills, "skill", "s", nil, "Skill as name or name:level (repeatable, at least one)")
	discoverCmd.Flags().StringVarP(&discoverLocation, "location", "l", "", "Location to search (defaults to config default_location)")
	discoverCmd.Flags().Float64Var(&discoverMinScore, "min-score", 0, "Only show leads scoring at least this much (0-100)")
	discoverCmd.Flags().StringVarP(&discoverQuery, "query", "q", "", "Only show leads whose title or company contains this text")
	discoverCmd.Flags().StringVar(&discoverFilterLocation, "filter-location", "", "Only show leads whose location contains this text")
	discoverCmd.Flags().IntVar(&discoverAnalyzeTop, "analyze-top", 0, "Analyze the N best visible leads")
	discoverCmd.Flags().StringVarP(&discoverOut, "out", "o", "", "Write leads and analyses as JSON to this file")

	_ = discoverCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(discoverCmd)
}

// DiscoverReport is the JSON written by --out
type DiscoverReport struct {
	Profile  types.Profile        `json:"profile"`
	Location string               `json:"location"`
	Criteria types.FilterCriteria `json:"criteria"`
	Jobs     []types.JobListing   `json:"jobs"`
	Sources  []llm.Citation       `json:"sources"`
	Analyses []AnalysisEntry      `json:"analyses,omitempty"`
}

// AnalysisEntry is one batch analysis outcome
type AnalysisEntry struct {
	JobID    string             `json:"jobId"`
	Analysis *types.JobAnalysis `json:"analysis,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func runDiscoverCmd(cmd *cobra.Command, _ []string) error {
	profile, err := buildProfile(discoverTitle, discoverSkills)
	if err != nil {
		return err
	}
	criteria := types.FilterCriteria{
		Query:    discoverQuery,
		MinScore: discoverMinScore,
		Location: discoverFilterLocation,
	}
	if criteria.MinScore < 0 || criteria.MinScore > 100 {
		return fmt.Errorf("--min-score must be between 0 and 100")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.controller.SetProfile(profile)
	report, err := discover(ctx, a.controller, a.agent, criteria, discoverLocation, discoverAnalyzeTop, cfg.AnalyzeConcurrency)
	if err != nil {
		return err
	}
	report.Location = discoverLocation
	if report.Location == "" {
		report.Location = cfg.DefaultLocation
	}

	printReport(cmd.OutOrStdout(), report)

	if discoverOut != "" {
		if err := writeReport(discoverOut, report); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", discoverOut)
	}
	return nil
}

// discover runs discovery through the controller, filters the batch and analyzes the top leads
func discover(ctx context.Context, c *pipeline.Controller, a agent.Agent, criteria types.FilterCriteria, location string, analyzeTop, concurrency int) (*DiscoverReport, error) {
	if _, err := c.StartDiscovery(ctx, location); err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	report := &DiscoverReport{
		Profile:  c.Profile(),
		Criteria: criteria,
		Jobs:     c.Jobs(criteria),
		Sources:  c.Sources(),
	}

	if analyzeTop > 0 && len(report.Jobs) > 0 {
		top := topJobs(report.Jobs, analyzeTop)
		for _, result := range agent.AnalyzeMany(ctx, a, report.Profile, top, concurrency) {
			entry := AnalysisEntry{JobID: result.Job.ID, Analysis: result.Analysis}
			if result.Err != nil {
				entry.Error = result.Err.Error()
			}
			report.Analyses = append(report.Analyses, entry)
		}
	}
	return report, nil
}

// topJobs returns the n highest scoring jobs; ties keep batch order
func topJobs(jobs []types.JobListing, n int) []types.JobListing {
	sorted := append([]types.JobListing(nil), jobs...)
	slices.SortStableFunc(sorted, func(a, b types.JobListing) int {
		return cmp.Compare(b.Score(), a.Score())
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// buildProfile builds a ready profile from a title and name[:level] skill flags
func buildProfile(title string, skills []string) (types.Profile, error) {
	profile := types.Profile{Title: strings.TrimSpace(title)}
	for _, raw := range skills {
		name, level, err := parseSkillFlag(raw)
		if err != nil {
			return types.Profile{}, err
		}
		profile.AddSkill(name, level)
	}
	if !profile.Ready() {
		return types.Profile{}, fmt.Errorf("a --title and at least one --skill are required")
	}
	return profile, nil
}

// parseSkillFlag splits "name:level"; the level is optional and case-insensitive
func parseSkillFlag(raw string) (string, types.SkillLevel, error) {
	name, levelText, hasLevel := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("invalid --skill %q: name is empty", raw)
	}
	if !hasLevel || strings.TrimSpace(levelText) == "" {
		return name, "", nil
	}
	for _, level := range []types.SkillLevel{types.LevelBeginner, types.LevelIntermediate, types.LevelExpert} {
		if strings.EqualFold(strings.TrimSpace(levelText), string(level)) {
			return name, level, nil
		}
	}
	return "", "", fmt.Errorf("invalid --skill %q: level must be Beginner, Intermediate or Expert", raw)
}

func printReport(out io.Writer, report *DiscoverReport) {
	printer := observability.NewPrinter(out)
	printer.PrintJobs(report.Jobs)
	for _, entry := range report.Analyses {
		if entry.Error != "" {
			fmt.Fprintf(out, "Analysis of %s failed: %s\n", entry.JobID, entry.Error)
			continue
		}
		job, _ := findJob(report.Jobs, entry.JobID)
		printer.PrintJobAnalysis(job, entry.Analysis)
	}
	if len(report.Sources) > 0 {
		fmt.Fprintln(out, "Sources:")
		for _, src := range report.Sources {
			fmt.Fprintf(out, "  - %s\n", src.URI)
		}
	}
}

func findJob(jobs []types.JobListing, id string) (types.JobListing, bool) {
	for _, job := range jobs {
		if job.ID == id {
			return job, true
		}
	}
	return types.JobListing{}, false
}

func writeReport(path string, report *DiscoverReport) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
