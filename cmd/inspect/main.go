// inspect is an operator tool that dumps enrollment metadata and lists the
// stored images under a blob prefix.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/your-org/faceid/internal/config"
	"github.com/your-org/faceid/internal/observability"
	"github.com/your-org/faceid/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	prefix := flag.String("prefix", storage.PurposeRegister+"/", "blob prefix to list")
	limit := flag.Int("limit", 100, "max metadata rows to print")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, "text")

	ctx := context.Background()

	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to postgres: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	blobs, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to minio: %v\n", err)
		os.Exit(1)
	}

	records, total, err := db.ListRecords(ctx, "", *limit, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list records: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("face records (%d of %d):\n", len(records), total)
	for _, rec := range records {
		line, _ := json.Marshal(rec)
		fmt.Println(string(line))
	}

	keys, err := blobs.List(ctx, *prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list objects: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("objects under %q (%d):\n", *prefix, len(keys))
	for _, key := range keys {
		fmt.Println(key)
	}
}
