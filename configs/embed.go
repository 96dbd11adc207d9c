// Package configs provides the embedded configuration template for wfkit.
//
// The template is embedded at build time so `wfkit config init` works from
// source builds and binary releases alike. It is written to:
//   - wfkit.yaml in the workflow directory (default)
//   - ~/.config/wfkit/config.yaml (`wfkit config init --user`)
//
// The configuration hierarchy is described in internal/config Load().
package configs

import _ "embed"

// Template is the commented example configuration.
//
//go:embed wfkit.example.yaml
var Template string
