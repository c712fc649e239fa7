// Package config loads the stackup configuration file.
//
// The configuration is optional: when no stackup.json / stackup.jsonc
// exists in the working directory, built-in defaults reproduce the exact
// deployment the original launch scripts drove. Files are parsed as JSONC
// (comments and trailing commas tolerated) and decoded over the defaults,
// so a config file only needs to state what differs.
package config
