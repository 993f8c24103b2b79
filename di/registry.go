package di

import (
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/ioc/logger"
	"github.com/kbukum/ioc/observability"
)

const componentName = "di"

// Options controls how GetFromContainer treats the user container's answers.
// The zero value trusts the user container completely.
type Options struct {
	// Fallback uses the default container when the user container returns a
	// falsy value.
	Fallback bool `yaml:"fallback" mapstructure:"fallback"`
	// FallbackOnErrors uses the default container when the user container
	// returns an error.
	FallbackOnErrors bool `yaml:"fallback_on_errors" mapstructure:"fallback_on_errors"`
}

// Option is a functional option for UseContainer.
type Option func(*Options)

// WithFallback enables fallback to the default container on falsy results.
func WithFallback() Option {
	return func(o *Options) { o.Fallback = true }
}

// WithFallbackOnErrors enables fallback to the default container on errors.
func WithFallbackOnErrors() Option {
	return func(o *Options) { o.FallbackOnErrors = true }
}

// WithOptions replaces all options with opts.
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

// override is the user container together with the options it was installed with.
type override struct {
	container Container
	options   Options
}

// Registry owns the default container and the optional user container.
type Registry struct {
	defaultContainer *DefaultContainer
	user             atomic.Pointer[override]
	metrics          *observability.ResolutionMetrics
	log              *logger.Logger
}

// RegistryOption configures a Registry created with NewRegistry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	meterProvider metric.MeterProvider
	log           *logger.Logger
}

// WithMeterProvider records resolution metrics on mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) RegistryOption {
	return func(c *registryConfig) { c.meterProvider = mp }
}

// WithLogger logs resolution decisions to l instead of the global logger.
func WithLogger(l *logger.Logger) RegistryOption {
	return func(c *registryConfig) { c.log = l }
}

// NewRegistry creates an isolated registry with its own default container.
// Package-level functions always use Global.
func NewRegistry(opts ...RegistryOption) *Registry {
	var cfg registryConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.meterProvider == nil {
		cfg.meterProvider = otel.GetMeterProvider()
	}

	r := &Registry{defaultContainer: NewDefaultContainer()}
	if cfg.log != nil {
		r.log = cfg.log.WithComponent(componentName)
		r.defaultContainer.log = r.log
	}

	metrics, err := observability.NewResolutionMetrics(cfg.meterProvider.Meter(observability.MeterName))
	if err != nil {
		r.logger().Warn("Resolution metrics disabled", logger.MergeWithError(nil, err))
	}
	r.metrics = metrics

	return r
}

var (
	globalRegistry *Registry
	globalOnce     sync.Once
)

// Global returns the process-wide registry, creating it on first call.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Default returns the registry's default container.
func (r *Registry) Default() *DefaultContainer {
	return r.defaultContainer
}

// User returns the installed user container and its options. The container
// is nil when none is installed.
func (r *Registry) User() (Container, Options) {
	o := r.user.Load()
	if o == nil {
		return nil, Options{}
	}
	return o.container, o.options
}

// UseContainer installs c as the user container, replacing any previous
// container and its options. Options are never merged across calls.
// Passing a nil container removes the override.
func (r *Registry) UseContainer(c Container, opts ...Option) {
	if c == nil {
		r.user.Store(nil)
		return
	}

	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	r.user.Store(&override{container: c, options: options})

	r.logger().Debug("User container installed", logger.Fields(
		"container", describeKey(c),
		"fallback", options.Fallback,
		"fallback_on_errors", options.FallbackOnErrors,
	))
}

func (r *Registry) logger() *logger.Logger {
	if r.log != nil {
		return r.log
	}
	return logger.WithComponent(componentName)
}

// UseContainer installs c as the user container of the global registry.
//
//	di.UseContainer(myContainer, di.WithFallback(), di.WithFallbackOnErrors())
func UseContainer(c Container, opts ...Option) {
	Global().UseContainer(c, opts...)
}
