// Package config provides configuration management for the corrector.
//
// It utilizes Viper for loading configuration from environment variables and an optional
// .env file. Defaults come from the `default` struct tags of each section.
//
// # Configuration Structure
//
//   - Reference / Target: connection settings of the two databases (REFERENCE_HOST, TARGET_NAME, ...)
//   - Reconcile: table list, tables file, fail-fast, dry-run and parallelism
//   - Log: level, format and optional rotated log file
//   - Server: HTTP port and API key
//   - Storage: S3/MinIO settings for run reports
//
// # Tables
//
// The tables to correct form an ordered mapping from table name to key column. It is read
// from RECONCILE_TABLES ("users=id,orders=order_id") or from a YAML tables file:
//
//	tables:
//	  users: id
//	  orders: order_id
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	specs, err := cfg.TableSpecs(".")
package config
