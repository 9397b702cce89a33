package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"storefront-filters/internal/channel"
	"storefront-filters/internal/config"
	"storefront-filters/internal/data"
	"storefront-filters/internal/db"
	"storefront-filters/internal/scenario"
)

func main() {
	var (
		configPath    = flag.String("config", "", "optional YAML config file")
		orderCount    = flag.Int("orders", 20000, "target number of orders to store")
		batchSize     = flag.Int("batch", 500, "batch size for bulk inserts")
		skipSeed      = flag.Bool("skip-seed", false, "skip inserting synthetic data")
		skipScenarios = flag.Bool("skip-scenarios", false, "skip running filter scenarios")
		showExplain   = flag.Bool("explain", false, "print EXPLAIN output for each scenario")
		showSQL       = flag.Bool("sql", false, "print the SQL issued by each scenario")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	zerolog.SetGlobalLevel(level)
	zlog.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Str("service", "orderfilter").Logger()
	log := zlog.Logger

	gdb, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Str("dialect", cfg.DB.Dialect).Msg("failed to connect")
	}

	if err := data.EnsureSchema(gdb); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	ctx := context.Background()

	if !*skipSeed {
		start := time.Now()
		seedCfg := data.SeedConfig{
			Orders:    *orderCount,
			BatchSize: *batchSize,
		}
		if err := data.SeedDataset(ctx, gdb, seedCfg); err != nil {
			log.Fatal().Err(err).Msg("failed to seed dataset")
		}
		log.Info().Int("orders", *orderCount).Dur("took", time.Since(start)).Msg("dataset ready")
	} else {
		log.Info().Msg("skip-seed enabled; reusing existing data")
	}

	hs, err := data.EnsureHotspots(ctx, gdb)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare hotspot records")
	}

	resolver := channel.NewResolver(channel.NewGormStore(gdb), cfg.DefaultChannelSlug, log)
	defaultChannel, err := resolver.DefaultChannelOrGraphQLError(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("no default channel; scenarios use the seeded one")
	} else {
		log.Info().Str("slug", defaultChannel.Slug).Msg("default channel")
		hs.Channel = *defaultChannel
	}

	if err := logDatasetStats(ctx, gdb, log); err != nil {
		log.Error().Err(err).Msg("failed to collect dataset stats")
	}

	if *skipScenarios {
		log.Info().Msg("skip-scenarios enabled; exiting")
		return
	}

	results := scenario.Run(ctx, gdb, scenario.Builtin(hs))

	for _, res := range results {
		if res.Err != nil {
			log.Error().Err(res.Err).Str("scenario", res.Name).Msg("scenario failed")
			continue
		}
		if *showSQL {
			log.Info().Str("scenario", res.Name).Msg(res.SQL)
		}
		if *showExplain {
			log.Info().Str("scenario", res.Name).Msg(res.Description)
			for _, line := range res.Explain {
				log.Info().Msg("  " + line)
			}
		}
	}

	if err := printResultsTable(results); err != nil {
		log.Error().Err(err).Msg("failed to render results")
	}
}

func logDatasetStats(ctx context.Context, gdb *gorm.DB, log zerolog.Logger) error {
	var orders, payments, channels int64
	if err := gdb.WithContext(ctx).Model(&data.Order{}).Count(&orders).Error; err != nil {
		return err
	}
	if err := gdb.WithContext(ctx).Model(&data.Payment{}).Count(&payments).Error; err != nil {
		return err
	}
	if err := gdb.WithContext(ctx).Model(&data.Channel{}).Count(&channels).Error; err != nil {
		return err
	}
	log.Info().Int64("orders", orders).Int64("payments", payments).Int64("channels", channels).Msg("dataset stats")
	return nil
}

func printResultsTable(results []scenario.Result) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Type", "Scenario", "Description", "Duration", "Rows", "Status")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "ERR: " + res.Err.Error()
		}
		row := []string{
			res.Type,
			res.Name,
			truncateText(res.Description, 40),
			res.Duration.Round(time.Microsecond).String(),
			fmt.Sprint(res.RowCount),
			status,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func truncateText(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if limit > len(runes) {
		limit = len(runes)
	}
	return string(runes[:limit]) + "…"
}
