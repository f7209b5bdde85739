// Package config holds the vegancheck runtime settings, the optional
// .vegancheck YAML file with per-site overrides, and the XDG directories
// used for persistent state.
package config
