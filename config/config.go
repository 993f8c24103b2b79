package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/ioc/di"
	"github.com/kbukum/ioc/errors"
	"github.com/kbukum/ioc/logger"
)

// Config is the host-facing configuration of the container packages.
//
//	container:
//	  fallback: true
//	  fallback_on_errors: false
//	logging:
//	  level: debug
//	  format: json
type Config struct {
	Container ContainerConfig `yaml:"container" mapstructure:"container"`
	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
}

// ContainerConfig mirrors di.Options.
type ContainerConfig struct {
	Fallback         bool `yaml:"fallback" mapstructure:"fallback"`
	FallbackOnErrors bool `yaml:"fallback_on_errors" mapstructure:"fallback_on_errors"`
}

// Options converts the configuration into options for di.UseContainer.
func (c ContainerConfig) Options() []di.Option {
	return []di.Option{di.WithOptions(di.Options{
		Fallback:         c.Fallback,
		FallbackOnErrors: c.FallbackOnErrors,
	})}
}

var validate = logger.NewConfigValidator()

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	c.Logging.ApplyDefaults()
}

// Validate checks every tagged field and reports the first failure as an
// INVALID_CONFIG error naming its dotted key, for example "logging.level".
// All failures are listed under the "fields" detail.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return errors.InvalidConfig("", "cannot validate configuration").WithCause(err)
	}

	keys := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		keys = append(keys, configKey(fe))
	}
	first := fieldErrs[0]
	reason := fmt.Sprintf("%s must satisfy %s", keys[0], first.Tag())
	if first.Param() != "" {
		reason = fmt.Sprintf("%s must be one of [%s] (got: %v)", keys[0], first.Param(), first.Value())
	}
	return errors.InvalidConfig(keys[0], reason).WithDetail("fields", keys)
}

// configKey turns a namespace such as "Config.logging.level" into "logging.level".
func configKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Apply installs the configured logger and, when container is non-nil,
// installs container with the configured options.
func (c *Config) Apply(container di.Container) {
	logger.Init(&c.Logging)
	if container != nil {
		di.UseContainer(container, c.Container.Options()...)
	}
}
