// Package config resolves the database connection string and execution mode
// from an environment snapshot, and builds the schema toolchain config.
package config
