// Package main loads and validates the content YAML pack, then upserts the
// item, skill, and monster definitions into the database so deployed
// content can be queried alongside player state.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/nonamep-p/plagg-engine/internal/config"
	"github.com/nonamep-p/plagg-engine/internal/content"
	"github.com/nonamep-p/plagg-engine/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	contentDir := flag.String("content", "content", "path to content YAML directory")
	dryRun := flag.Bool("dry-run", false, "validate only, do not touch the database")
	flag.Parse()

	start := time.Now()

	reg, err := content.Load(*contentDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "content validation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("validated %d items, %d skills, %d monsters, %d recipes, %d dungeons\n",
		len(reg.Items()), len(reg.Skills()), len(reg.Monsters()), len(reg.Recipes()), len(reg.Dungeons()))

	if *dryRun {
		fmt.Printf("dry run complete in %s\n", time.Since(start).Round(time.Millisecond))
		return
	}

	v := viper.New()
	v.SetConfigFile(*configPath)
	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("reading config: %v", err)
	}
	var dbCfg config.DatabaseConfig
	if err := v.Sub("database").Unmarshal(&dbCfg); err != nil {
		log.Fatalf("parsing database config: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	n, err := upsertAll(ctx, pool, reg)
	if err != nil {
		log.Fatalf("upserting content: %v", err)
	}
	fmt.Printf("upserted %d definitions in %s\n", n, time.Since(start).Round(time.Millisecond))
}

func upsertAll(ctx context.Context, pool *postgres.Pool, reg *content.Registry) (int, error) {
	n := 0
	for _, it := range reg.Items() {
		if err := upsert(ctx, pool, "item", it.ID, it); err != nil {
			return n, err
		}
		n++
	}
	for _, sk := range reg.Skills() {
		if err := upsert(ctx, pool, "skill", sk.ID, sk); err != nil {
			return n, err
		}
		n++
	}
	for _, mon := range reg.Monsters() {
		if err := upsert(ctx, pool, "monster", mon.ID, mon); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func upsert(ctx context.Context, pool *postgres.Pool, kind, id string, def any) error {
	body, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encoding %s %q: %w", kind, id, err)
	}
	_, err = pool.DB().Exec(ctx, `
		INSERT INTO content_defs (kind, id, def)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, id) DO UPDATE SET def = $3, updated_at = NOW()`,
		kind, id, body,
	)
	if err != nil {
		return fmt.Errorf("upserting %s %q: %w", kind, id, err)
	}
	return nil
}
