// Package config provides configuration loading and validation for the
// audio dataset builder. It handles YAML-based configuration with struct
// validation and applies defaults for every optional parameter.
package config
