package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akostiuk/zoewatch/config"
	"github.com/akostiuk/zoewatch/core/model"
	"github.com/akostiuk/zoewatch/core/parse"
	"github.com/akostiuk/zoewatch/infra/fetch"
	"github.com/akostiuk/zoewatch/infra/logger"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch and parse the announcement page once without writing anything",
	RunE:  check,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func check(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New("check")
	fetcher, err := fetch.New(cfg.Source, logg)
	if err != nil {
		return fmt.Errorf("fetcher: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Source.TimeoutSeconds)*time.Second)
	defer cancel()
	body, err := fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	parser := parse.New(parse.DefaultMarkers(), logg)
	block, ok := parser.Locate(body)
	if !ok {
		return fmt.Errorf("no announcement found on the page")
	}
	fmt.Printf("title: %s\nclass: %s\n", block.Title, block.Class)
	if block.Class == model.ClassUnrecognized {
		return nil
	}

	date, ok := parser.ResolveDate(block.Title, block.Class, time.Now())
	if !ok {
		return fmt.Errorf("could not resolve date from title %q", block.Title)
	}
	fmt.Printf("date: %s\n", date.Format("2006-01-02"))

	sched := parser.Extract(block.Text)
	for _, g := range model.Groups {
		v := sched[g]
		if v == "" {
			v = "-"
		}
		fmt.Printf("  %s: %s\n", g, v)
	}
	return nil
}
