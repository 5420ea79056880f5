// Package config defines the JSON-serializable configuration model for the
// ingestor. It is intentionally small, explicit, and dependency-free so a run
// can be described by a file on disk or assembled from CLI flags without
// additional glue code; decoding is performed by the standard library.
//
// Example:
//
//	{
//	  "source":  { "path": "users.csv", "delimiter": "," },
//	  "storage": {
//	    "kind": "postgres",
//	    "table": "users",
//	    "db": { "host": "localhost", "port": 5432, "name": "postgres",
//	            "user": "postgres", "password": "postgres" }
//	  },
//	  "runtime": { "batch_size": 1000, "sample_rows": 1000 }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"csvingest/internal/schema"
)

// Config describes a full ingest run.
type Config struct {
	// Source describes the input file.
	Source Source `json:"source"`

	// Storage selects the destination database and table.
	Storage Storage `json:"storage"`

	// Runtime controls batching and sampling.
	Runtime Runtime `json:"runtime"`

	// Lenient disables strict coercion: non-conforming cells become NULL
	// and are counted instead of failing the run.
	Lenient bool `json:"lenient"`

	// Dedupe drops rows identical to one already written in this run.
	Dedupe bool `json:"dedupe"`
}

// Source describes the delimited input file. The first line must be a header
// naming the columns.
type Source struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`

	// Delimiter is the field separator; "," when empty, "\t" for tabs.
	Delimiter string `json:"delimiter"`

	// TrimSpace trims surrounding spaces from every field value.
	TrimSpace bool `json:"trim_space"`
}

// Storage selects the destination.
type Storage struct {
	// Kind selects the backend: "postgres" (default), "sqlite", or "mysql".
	Kind string `json:"kind"`

	// Table is the destination table name. Empty means derive it from the
	// source file's base name.
	Table string `json:"table"`

	// DB supplies connection parameters.
	DB DB `json:"db"`
}

// DB holds connection parameters. Every field is optional; defaults target a
// local database named "postgres" with postgres/postgres credentials.
type DB struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Name     string `json:"name"`
	User     string `json:"user"`
	Password string `json:"password"`

	// DSN, when set, overrides the assembled connection string entirely.
	// For the sqlite backend this is the database file path.
	DSN string `json:"dsn"`
}

// Runtime controls batching and sampling.
type Runtime struct {
	// BatchSize is the number of rows per bulk insert. Default 1000.
	BatchSize int `json:"batch_size"`

	// SampleRows bounds how many data rows type inference inspects.
	// Default 1000.
	SampleRows int `json:"sample_rows"`

	// ChannelBuffer sizes the parser→loader channel. Default 4096.
	ChannelBuffer int `json:"channel_buffer"`
}

// Load decodes a Config from a JSON file.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var c Config
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return c, nil
}

// Normalized returns a copy of c with every documented default applied:
// backend "postgres", host localhost:5432, database/user/password "postgres",
// table name derived from the source file, batch size 1000, sample rows 1000.
// The sqlite backend gets no database name default; its name is a file path
// and must be supplied via db.name or db.dsn.
func (c Config) Normalized() Config {
	if c.Storage.Kind == "" {
		c.Storage.Kind = "postgres"
	}
	if c.Storage.DB.Host == "" {
		c.Storage.DB.Host = "localhost"
	}
	if c.Storage.DB.Port == 0 {
		c.Storage.DB.Port = defaultPort(c.Storage.Kind)
	}
	// sqlite has no default: its name is a file path, and defaulting it to
	// "postgres" would silently create a file of that name.
	if c.Storage.DB.Name == "" && c.Storage.Kind != "sqlite" {
		c.Storage.DB.Name = "postgres"
	}
	if c.Storage.DB.User == "" {
		c.Storage.DB.User = "postgres"
	}
	if c.Storage.DB.Password == "" {
		c.Storage.DB.Password = "postgres"
	}
	if c.Storage.Table == "" && c.Source.Path != "" {
		c.Storage.Table = schema.TableNameFromPath(c.Source.Path)
	}
	if c.Runtime.BatchSize == 0 {
		c.Runtime.BatchSize = 1000
	}
	if c.Runtime.SampleRows == 0 {
		c.Runtime.SampleRows = 1000
	}
	if c.Runtime.ChannelBuffer == 0 {
		c.Runtime.ChannelBuffer = 4096
	}
	return c
}

func defaultPort(kind string) int {
	switch kind {
	case "mysql":
		return 3306
	default:
		return 5432
	}
}

// DSN assembles the backend-native connection string, honoring the DSN
// override. Call on a Normalized config.
func (c Config) DSN() string {
	db := c.Storage.DB
	if db.DSN != "" {
		return db.DSN
	}
	switch c.Storage.Kind {
	case "sqlite":
		// No server to connect to; the database name is the file path.
		return db.Name
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			db.User, db.Password, db.Host, db.Port, db.Name)
	default:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(db.User, db.Password),
			Host:   db.Host + ":" + strconv.Itoa(db.Port),
			Path:   "/" + db.Name,
		}
		return u.String()
	}
}
