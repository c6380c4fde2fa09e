// Package correction exposes reconciliation over HTTP.
//
// The feature reconciles the configured tables of the target database against the
// reference database, inspects their schemas and serves stored run reports.
//
// # HTTP Endpoints
//
//   - GET /correction/tables : Lists the configured tables and key columns.
//   - GET /correction/schema : Compares table columns across both databases.
//   - POST /correction/run : Runs a reconciliation (supports ?dry_run=true).
//   - GET /correction/reports : Lists stored run reports.
//   - GET /correction/reports/:id : Returns one stored run report.
//
// Only one run is active at a time; a concurrent request receives 409 Conflict.
package correction
