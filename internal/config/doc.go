// Package config loads the agent-gateway YAML configuration.
//
// Values support ${VAR_NAME} environment expansion so secrets like the JWT
// signing key stay out of the file. Duration fields are written as Go
// duration strings ("15s", "2m") and parsed at load time.
package config
