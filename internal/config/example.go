package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# fieldtree configuration file
# Values can be overridden by FIELDTREE_* environment variables or CLI flags

# Format for printing field trees: text, json, or yaml
output = "text"

# Spaces per level in written schemas (0 writes compact JSON)
indent = 2

# Reject values whose objects carry members the schema does not declare.
# When false, such members are tolerated.
strict_additional = false

# Remove undeclared object members from checked values, at every level
remove_extra_fields = false

# Logging
log_level = "warn"    # debug, info, warn, error
log_format = "text"   # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
