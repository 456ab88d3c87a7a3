// Package config holds idguard's runtime configuration: provider credentials
// and endpoints, feature flags, the hygiene category list, LLM settings, Tor
// settings and the location of the report store.
//
// A Config starts from NewConfig's defaults, is overlaid with the YAML file
// found by FindConfigFile, then with credentials from the environment
// (ApplyEnv), and finally with CLI flags. Validate reports the first problem
// as a sentinel error.
package config
