// Package cmd implements the prefkv command-line interface. It reads and writes the
// typed preference stores of a data directory, one command per store operation.
//
// The package is organized into several subpackages:
//
//   - kv: Store commands (get, set, rm, has, list, clear, export, perf)
//   - util: Shared utilities for flags and configuration (internal use)
//
// Every flag can also be set with an environment variable prefixed with PREFKV_
// (e.g. PREFKV_DATA_DIR), .env and .env.local in the working directory are loaded first.
//
// See prefkv -help for a list of all commands.
package cmd
