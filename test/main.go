package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/sky93/refreshflow"
	"github.com/sky93/refreshflow/test/remote"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env with REFRESHFLOW_DSN / REFRESHFLOW_DB for the journal.
	_ = godotenv.Load()

	// 1) Build a fake remote with one clean datasource, an ambiguous pair of
	// workbooks and a flow whose refresh fails.
	srv := remote.NewServer()
	srv.AddResource(refreshflow.KindDatasource, "ds-1", map[string]string{"name": "sales"}, refreshflow.JobSucceeded, 2*time.Second)
	srv.AddResource(refreshflow.KindWorkbook, "wb-1", map[string]string{"name": "weekly"}, refreshflow.JobSucceeded, time.Second)
	srv.AddResource(refreshflow.KindWorkbook, "wb-2", map[string]string{"name": "weekly"}, refreshflow.JobSucceeded, time.Second)
	srv.AddResource(refreshflow.KindFlow, "fl-1", map[string]string{"name": "cleanup"}, refreshflow.JobFailed, time.Second)

	// 2) Create the refreshflow config
	cfg := refreshflow.Config{
		Lookup:       srv,
		Trigger:      srv,
		Status:       srv,
		PollInterval: 500 * time.Millisecond,
		WaitTimeout:  30 * time.Second,
	}

	// 3) Optionally record outcomes into MySQL (see schema.sql)
	if dsn := os.Getenv("REFRESHFLOW_DSN"); dsn != "" {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			panic(err)
		}
		if err = db.Ping(); err != nil {
			panic(err)
		}
		dbName := os.Getenv("REFRESHFLOW_DB")
		if dbName == "" {
			dbName = "refreshflow"
		}
		cfg.Journal = refreshflow.NewJournal(db, dbName)
		fmt.Println("Journaling batches to database", dbName)
	}

	coord, err := refreshflow.New(cfg)
	if err != nil {
		panic(err)
	}

	// 4) Run a batch and report per-item outcomes
	br, err := coord.Run(context.Background(), refreshflow.BatchRequest{Items: []refreshflow.ItemRef{
		{Kind: refreshflow.KindDatasource, Filters: map[string]string{"name": "sales"}},
		{Kind: refreshflow.KindWorkbook, Filters: map[string]string{"name": "weekly"}},
		{Kind: refreshflow.KindFlow, Filters: map[string]string{"name": "cleanup"}},
	}})
	if err != nil {
		panic(err)
	}

	fmt.Printf("Batch %s: %d succeeded, %d failed\n", br.BatchID, len(br.Succeeded()), len(br.Failed()))
	for _, res := range br.Results {
		line := fmt.Sprintf("  [%d] %-10s -> %s", res.Index, res.Ref.Kind, res.Outcome)
		if res.Err != nil {
			line += " (" + res.Err.Error() + ")"
		}
		fmt.Println(line)
	}
}
