package config

import (
	"fmt"
	"strings"
)

// IssueSeverity classifies a validation finding.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is a dotted path into the
// config (e.g. "storage.kind").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements error so a single Issue can be returned directly.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// knownKinds mirrors the backends registered by internal/storage/all. Kept
// here so config validation needs no storage import (and no driver linkage).
var knownKinds = map[string]bool{"postgres": true, "sqlite": true, "mysql": true}

// Validate statically checks a Config and returns every finding rather than
// failing on the first. It does not mutate the config; callers decide whether
// warnings are fatal. Run it on a Normalized config so defaults do not
// trigger findings.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Source.Path) == "" {
		issues = append(issues, Issue{SeverityError, "source.path", "input file path is required"})
	}
	if d := c.Source.Delimiter; len(d) > 1 && d != "\\t" {
		issues = append(issues, Issue{SeverityWarning, "source.delimiter",
			fmt.Sprintf("multi-character delimiter %q; only its first rune is used", d)})
	}

	if !knownKinds[c.Storage.Kind] {
		issues = append(issues, Issue{SeverityError, "storage.kind",
			fmt.Sprintf("unknown backend %q (known: mysql, postgres, sqlite)", c.Storage.Kind)})
	}
	if strings.TrimSpace(c.Storage.Table) == "" {
		issues = append(issues, Issue{SeverityError, "storage.table",
			"table name is empty and cannot be derived from source.path"})
	}
	if c.Storage.Kind == "sqlite" {
		if c.Storage.DB.DSN == "" && strings.TrimSpace(c.Storage.DB.Name) == "" {
			issues = append(issues, Issue{SeverityError, "storage.db",
				"sqlite needs a database file path in db.dsn or db.name"})
		}
	} else if c.Storage.DB.DSN == "" {
		if c.Storage.DB.Port < 0 || c.Storage.DB.Port > 65535 {
			issues = append(issues, Issue{SeverityError, "storage.db.port",
				fmt.Sprintf("port %d out of range", c.Storage.DB.Port)})
		}
	}

	if c.Runtime.BatchSize < 1 {
		issues = append(issues, Issue{SeverityError, "runtime.batch_size", "must be >= 1"})
	}
	if c.Runtime.SampleRows < 1 {
		issues = append(issues, Issue{SeverityError, "runtime.sample_rows", "must be >= 1"})
	}
	if c.Runtime.ChannelBuffer < 1 {
		issues = append(issues, Issue{SeverityError, "runtime.channel_buffer", "must be >= 1"})
	}

	if c.Lenient && c.Dedupe {
		issues = append(issues, Issue{SeverityWarning, "dedupe",
			"lenient mode nulls bad cells before hashing; distinct source rows may dedupe to one"})
	}

	return issues
}

// FirstError returns the first error-severity issue as an error, or nil.
func FirstError(issues []Issue) error {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return iss
		}
	}
	return nil
}
