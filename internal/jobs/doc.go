// Package jobs keeps an observational SQLite journal of pipeline executions
// for the status API and the CLI. Request handling never blocks on it.
package jobs
