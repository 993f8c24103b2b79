// Package config loads the container and logging settings of a host
// application.
//
// It uses Viper to read a YAML file and IOC_-prefixed environment variables,
// optionally seeded from a .env file:
//
//	var cfg config.Config
//	if err := config.LoadConfig("my-service", &cfg); err != nil {
//	    return err
//	}
//	cfg.Apply(hostContainer)
//
// IOC_CONTAINER_FALLBACK=true overrides container.fallback, and so on for
// every key.
package config
