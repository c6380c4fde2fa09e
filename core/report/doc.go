// Package report turns the per-table results of a reconciliation run into a JSON report.
//
// Each table is reported with a status (ok, error, skipped), its insert/update/unchanged
// counts and, on failure, the error text. Reports can be archived in object storage under
// "<prefix>/<run-id>.json" and read back by run id.
package report
