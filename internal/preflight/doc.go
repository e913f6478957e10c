// Package preflight provides readiness checks for the data source and the
// local directories Watchtower writes to. `watchtower config validate` runs
// them after the configuration itself parses.
package preflight
