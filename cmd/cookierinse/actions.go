package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli"

	"github.com/hellstation/cookierinse"
)

func analyze(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errors.New("usage: cookierinse analyze <cookies-file>")
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}
	agg, err := engine.AnalyzeFile(path)
	if err != nil {
		return err
	}
	score, level, reasons := engine.Score(agg)

	fmt.Println("UNIQUE COOKIES BY SITES:")
	fmt.Println()
	for _, site := range agg.SitesByCount() {
		services := strings.Join(engine.ServiceList(agg, site), ", ")
		fmt.Printf("%s(%d) - %s\n", site, agg.SiteCounts[site], services)
	}

	fmt.Println()
	fmt.Println("AUTH DETECTED:")
	if len(agg.SiteAuth) == 0 {
		fmt.Println("  not found")
	} else {
		for _, site := range agg.SitesByCount() {
			if names := agg.SiteAuth[site]; len(names) > 0 {
				fmt.Printf("  %s: %s\n", site, strings.Join(names, ", "))
			}
		}
	}

	fmt.Println()
	fmt.Println("SITES BY CATEGORY:")
	byCategory := engine.SitesByCategory(agg)
	categories := make([]string, 0, len(byCategory))
	for name := range byCategory {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	for _, name := range categories {
		fmt.Printf("  %s: %s\n", name, strings.Join(byCategory[name], ", "))
	}

	fmt.Println()
	fmt.Println("PROFILE SCORING")
	fmt.Printf("SCORE: %d\n", score)
	fmt.Printf("VALUE: %s\n", level)

	fmt.Println()
	fmt.Println("SCORE DETAILS:")
	for _, r := range reasons {
		fmt.Printf("  %s\n", r)
	}

	printWarnings(agg.Warnings)
	return nil
}

func clean(ctx *cli.Context) error {
	input := ctx.Args().First()
	if input == "" {
		return errors.New("usage: cookierinse clean <cookies-file> [-o output]")
	}
	output := ctx.String("output")
	if output == "" {
		output = input + ".cleaned"
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}
	report, err := engine.Clean(input, output)
	if err != nil {
		return err
	}

	fmt.Printf("Cleaned %s -> %s\n", input, output)
	fmt.Println()
	fmt.Printf("Auth cookies kept:  %d\n", report.TotalCleaned)
	fmt.Printf("Unique cookies:     %d\n", report.TotalUniqueCookies)
	fmt.Printf("Unique sites:       %d\n", report.UniqueSites)
	fmt.Printf("Most common site:   %s\n", report.MostCommonSite)
	fmt.Printf("Oldest cookie age:  %s\n", report.OldestCookieAge)
	fmt.Printf("Tracking cookies:   %d\n", report.TrackingIntensity)
	fmt.Printf("Privacy score:      %.1f/10\n", report.PrivacyScore)
	fmt.Println()
	fmt.Printf("Footprint score:    %d (%s)\n", report.Score, report.Level)
	for _, r := range report.Reasons {
		fmt.Printf("  %s\n", r)
	}

	printWarnings(report.Warnings)
	return nil
}

func export(ctx *cli.Context) error {
	opts := cookierinse.ExportOptions{
		Browser:        cookierinse.Browser(strings.ToLower(ctx.String("browser"))),
		Profile:        ctx.String("profile"),
		IncludeExpired: ctx.Bool("include-expired"),
	}

	res, err := cookierinse.Export(context.Background(), opts)
	if err != nil {
		return err
	}

	output := ctx.String("output")
	var sb strings.Builder
	for _, line := range res.Lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(output, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Printf("Exported %d cookies to %s\n", len(res.Lines), output)
	printWarnings(res.Warnings)
	return nil
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
