// Package configs provides the embedded configuration template for storytree.
//
// The template is embedded at build time so `storytree init` works from
// source builds and binary releases alike.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults (internal/config NewConfig)
//  2. User config ($XDG_CONFIG_HOME/storytree/config.yaml)
//  3. Project config (.storytree.yaml)
//  4. Environment variables (STORYTREE_*)
package configs

import _ "embed"

// ProjectConfigTemplate is written to .storytree.yaml by `storytree init`.
//
//go:embed storytree.example.yaml
var ProjectConfigTemplate string
