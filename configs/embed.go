// Package configs provides the templates `credcascade init` writes.
//
// Templates are embedded at build time so they ship with every binary.
// To modify them, edit the .yaml files in this directory and rebuild.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults (internal/config NewConfig)
//  2. User config (~/.config/credcascade/config.yaml)
//  3. Project config (.credcascade.yaml)
//  4. Environment variables (CREDCASCADE_*)
package configs

import _ "embed"

// ProjectConfigTemplate is the template for .credcascade.yaml.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

// ExampleGraph is a small credential registry for trying out save and
// delete cascades. It contains a foundational set (cs-registration), a
// redundant pair (cs-licence-a, cs-licence-b) and a plain set (cs-permit).
//
//go:embed graph.example.yaml
var ExampleGraph string
