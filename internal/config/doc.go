// Package config loads and merges compare-changesets configuration.
//
// Precedence (highest to lowest):
//  1. CLI flags that were explicitly set
//  2. Environment variables (COMPARE_CHANGESETS_FORMAT, COMPARE_CHANGESETS_REPO, etc.)
//  3. Config file ($XDG_CONFIG_HOME/compare-changesets/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged and validated [Config], [Save] to write the
// config file, and [SetField] to update a single key.
package config
