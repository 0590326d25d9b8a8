// Package config defines the canonical, JSON-serializable configuration model
// for the lake ETL. It is intentionally small, explicit, and dependency-free
// so that pipelines can be loaded from disk and passed through the program
// without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job": "sparkify",
//	  "source":  { "kind": "file", "file": { "song_root": "data/song_data", "log_root": "data/log_data" } },
//	  "storage": { "kind": "lake", "lake": { "output_root": "data/out" } },
//	  "runtime": { "fetch_workers": 4 }
//	}
package config

import (
	"encoding/json"
	"io"
	"os"
)

// Pipeline describes one full run: where the two raw trees come from,
// where the star schema goes, and how much read parallelism to use.
type Pipeline struct {
	// Job names the run for metrics labeling and log lines.
	Job string `json:"job"`

	Source  Source        `json:"source"`
	Storage Storage       `json:"storage"`
	Runtime RuntimeConfig `json:"runtime"`
}

// Source identifies where the raw JSON trees are read from.
type Source struct {
	// Kind selects the source implementation: "file" or "s3".
	Kind string `json:"kind"`

	File SourceFile `json:"file"`
	S3   SourceS3   `json:"s3"`
}

// SourceFile holds the local-filesystem source roots.
type SourceFile struct {
	// SongRoot is the directory tree holding song catalog documents.
	SongRoot string `json:"song_root"`
	// LogRoot is the directory tree holding activity log documents.
	LogRoot string `json:"log_root"`
}

// SourceS3 holds the object-store source location. Credentials and
// endpoints come from the AWS SDK chain, never from this file.
type SourceS3 struct {
	Bucket     string `json:"bucket"`
	SongPrefix string `json:"song_prefix"`
	LogPrefix  string `json:"log_prefix"`
	Region     string `json:"region"`
}

// Storage selects the destination for the built tables.
type Storage struct {
	// Kind selects the sink: "lake" (partitioned parquet, the default),
	// "postgres", or "sqlite".
	Kind string `json:"kind"`

	Lake StorageLake `json:"lake"`
	DB   DBConfig    `json:"db"`
}

// StorageLake configures the parquet lake sink.
type StorageLake struct {
	// OutputRoot is the destination root; each table becomes a directory
	// under it.
	OutputRoot string `json:"output_root"`
}

// DBConfig configures a warehouse sink (postgres or sqlite).
type DBConfig struct {
	// DSN is the connection string (pgx pool DSN or a sqlite file path).
	DSN string `json:"dsn"`

	// BatchSize caps rows per COPY/INSERT batch. Zero means the default.
	BatchSize int `json:"batch_size"`
}

// RuntimeConfig controls read concurrency.
type RuntimeConfig struct {
	// FetchWorkers is the number of concurrent object readers per source
	// tree. Zero means the default.
	FetchWorkers int `json:"fetch_workers"`
}

// Load reads and decodes a pipeline file.
func Load(path string) (Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pipeline{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode decodes a pipeline from JSON.
func Decode(r io.Reader) (Pipeline, error) {
	var p Pipeline
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}
