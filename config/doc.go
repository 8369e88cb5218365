// Package config loads service configuration with Viper.
//
// Values are layered: the YAML file first (./cmd/<service>/config.yml by
// default), then variables from an optional .env file, then the process
// environment. Environment keys are the upper-cased mapstructure path with
// dots replaced by underscores, so OAUTH_ACCESS_TOKEN_TTL sets
// oauth.access_token_ttl.
//
//	var cfg Config
//	if err := config.LoadConfig("authd", &cfg); err != nil { ... }
package config
