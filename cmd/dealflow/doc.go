// Package main hosts the dealflow CLI.
//
// Commands evaluate pitch material through the pipeline, run manifest
// batches under a lock, browse the evaluation store, check the environment
// and serve the MCP tools. Configuration resolution and logger setup live in
// the command context so subcommands only wire collaborators together.
package main
