package main

// Default limits for CLI commands.
const (
	DefaultSearchLimit = 10
	DefaultAuditLimit  = 20
)

// Valid structured output formats.
var validFormats = []string{"json", "yaml"}
