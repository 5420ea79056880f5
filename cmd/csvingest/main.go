// Command csvingest loads a delimited text file into a relational database
// table, creating the table from the inferred schema when it does not exist.
//
// With no flags it loads the bundled users.csv into a local Postgres database
// named "postgres". Every connection parameter, the backend, and the table
// name can be overridden by flags or by a JSON config file; explicit flags
// win over the file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"csvingest/internal/config"
	"csvingest/internal/ingest"
	"csvingest/internal/metrics"
	"csvingest/internal/metrics/prompush"

	// register all storage backends with the factory
	_ "csvingest/internal/storage/all"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "JSON config file path (optional)")
		filePath = flag.String("file", "users.csv", "input file path")
		table    = flag.String("table", "", "destination table name (default: derived from file name)")

		backend  = flag.String("backend", "", `storage backend: "postgres", "sqlite", or "mysql"`)
		host     = flag.String("host", "", "database host")
		port     = flag.Int("port", 0, "database port")
		dbName   = flag.String("db", "", "database name (sqlite: database file path)")
		user     = flag.String("user", "", "database user")
		password = flag.String("password", "", "database password")
		dsn      = flag.String("dsn", "", "full connection string; overrides host/port/db/user/password")

		delimiter = flag.String("delimiter", "", `field delimiter (default ","; use "\t" for tabs)`)
		trimSpace = flag.Bool("trim", false, "trim surrounding spaces from field values")

		batchSize  = flag.Int("batch-size", 0, "rows per bulk insert")
		sampleRows = flag.Int("sample-rows", 0, "data rows inspected for type inference")

		lenient = flag.Bool("lenient", false, "null out non-conforming cells instead of failing the run")
		dedupe  = flag.Bool("dedupe", false, "drop rows identical to one already written in this run")

		validate = flag.Bool("validate", false, "validate the configuration and exit")
		verbose  = flag.Bool("v", false, "enable verbose logs")

		metricsBackend = flag.String("metrics-backend", "none", "metrics backend (pushgateway, none)")
		pushgatewayURL = flag.String("pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	)
	flag.Parse()

	var cfg config.Config
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			fatalf("%v", err)
		}
	}

	// Explicit flags override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file":
			cfg.Source.Path = *filePath
		case "table":
			cfg.Storage.Table = *table
		case "backend":
			cfg.Storage.Kind = *backend
		case "host":
			cfg.Storage.DB.Host = *host
		case "port":
			cfg.Storage.DB.Port = *port
		case "db":
			cfg.Storage.DB.Name = *dbName
		case "user":
			cfg.Storage.DB.User = *user
		case "password":
			cfg.Storage.DB.Password = *password
		case "dsn":
			cfg.Storage.DB.DSN = *dsn
		case "delimiter":
			cfg.Source.Delimiter = *delimiter
		case "trim":
			cfg.Source.TrimSpace = *trimSpace
		case "batch-size":
			cfg.Runtime.BatchSize = *batchSize
		case "sample-rows":
			cfg.Runtime.SampleRows = *sampleRows
		case "lenient":
			cfg.Lenient = *lenient
		case "dedupe":
			cfg.Dedupe = *dedupe
		}
	})
	if cfg.Source.Path == "" {
		cfg.Source.Path = *filePath
	}

	cfg = cfg.Normalized()

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if err := config.FirstError(issues); err != nil {
		fatalf("configuration is invalid")
	}
	if *validate {
		log.Printf("configuration is valid")
		return
	}

	setupMetrics(*metricsBackend, *pushgatewayURL, cfg.Storage.Table, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush: %v", err)
		}
	}()

	if *verbose {
		log.Printf("run: file=%s backend=%s table=%s batch=%d",
			cfg.Source.Path, cfg.Storage.Kind, cfg.Storage.Table, cfg.Runtime.BatchSize)
	}

	res, err := ingest.New(cfg).Load(context.Background())
	if err != nil {
		// os.Exit skips the deferred flush; push failure metrics first.
		if ferr := metrics.Flush(); ferr != nil {
			log.Printf("metrics: flush: %v", ferr)
		}
		fatalf("%v", err)
	}

	fmt.Printf("loaded %d rows into %s in %s\n",
		res.Inserted, res.Table, res.Elapsed.Truncate(time.Millisecond))
}

// setupMetrics installs the selected metrics backend; the default nop backend
// stays active when metrics are disabled or setup fails.
func setupMetrics(backend, gwURL, job string, verbose bool) {
	switch backend {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("csvingest_"+job, gwURL)
		if err != nil {
			log.Printf("metrics: init pushgateway backend: %v; metrics disabled", err)
			return
		}
		metrics.SetBackend(b)
		if verbose {
			log.Printf("metrics: backend=pushgateway url=%s", gwURL)
		}
	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backend)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
