package di

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kbukum/ioc/errors"
	"github.com/kbukum/ioc/logger"
)

// Container is anything that can produce an instance for a key. The key is
// either the Type itself or an explicit identifier such as a string or a
// *Token. A Container may return an error, or a falsy value to signal that
// it has nothing for the key.
type Container interface {
	Get(key any, typ Type) (any, error)
}

// ContainerFunc adapts a function to the Container interface.
type ContainerFunc func(key any, typ Type) (any, error)

// Get calls f(key, typ).
func (f ContainerFunc) Get(key any, typ Type) (any, error) { return f(key, typ) }

// EntryInfo describes a constructed entry for introspection.
type EntryInfo struct {
	Key  any
	Type string
}

// DefaultContainer memoizes one instance per key, constructing it with the
// key's Type on first lookup. It is safe for concurrent use.
type DefaultContainer struct {
	entries map[any]*entry
	order   []*entry
	mutex   sync.RWMutex
	log     *logger.Logger
}

type entry struct {
	key         any
	typ         Type
	instance    any
	initialized bool
	removed     bool
	mutex       sync.Mutex
}

// NewDefaultContainer creates an empty container.
func NewDefaultContainer() *DefaultContainer {
	return &DefaultContainer{
		entries: make(map[any]*entry),
	}
}

// Get returns the instance stored under key, constructing it with typ.New()
// on first request. A construction error is returned as-is and nothing is
// stored, so a later call constructs again.
//
// A constructor may resolve other keys from the same container, but not its
// own key.
func (c *DefaultContainer) Get(key any, typ Type) (any, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	for {
		instance, detached, err := c.initialize(c.entryFor(key), typ)
		if !detached {
			return instance, err
		}
	}
}

// entryFor returns the entry for key, inserting an empty one if needed.
func (c *DefaultContainer) entryFor(key any) *entry {
	c.mutex.RLock()
	e, exists := c.entries[key]
	c.mutex.RUnlock()
	if exists {
		return e
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if e, exists = c.entries[key]; !exists {
		e = &entry{key: key}
		c.entries[key] = e
	}
	return e
}

// GetType is Get with typ serving as its own key.
func (c *DefaultContainer) GetType(typ Type) (any, error) {
	if isNilType(typ) {
		return nil, errors.InvalidType("<nil>", "no type given")
	}
	return c.Get(typ, typ)
}

// initialize constructs e's instance once. detached reports that e was
// removed from the map by a failed construction while the caller waited, in
// which case the caller must look the key up again.
func (c *DefaultContainer) initialize(e *entry, typ Type) (instance any, detached bool, err error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.initialized {
		return e.instance, false, nil
	}
	if e.removed {
		return nil, true, nil
	}

	if isNilType(typ) {
		c.remove(e)
		return nil, false, errors.InvalidType("<nil>", "no type given for missing key").WithDetail("key", describeKey(e.key))
	}

	instance, err = typ.New()
	if err != nil {
		c.remove(e)
		log := c.logger()
		if log.Enabled(zerolog.DebugLevel) {
			log.Debug("Default container construction failed", logger.MergeWithError(logger.Fields(
				logger.FieldKey, describeKey(e.key),
				logger.FieldType, typ.String(),
			), err))
		}
		return nil, false, err
	}

	e.typ = typ
	e.instance = instance
	e.initialized = true

	c.mutex.Lock()
	c.order = append(c.order, e)
	c.mutex.Unlock()

	log := c.logger()
	if log.Enabled(zerolog.DebugLevel) {
		log.Debug("Default container constructed instance", logger.Fields(
			logger.FieldKey, describeKey(e.key),
			logger.FieldType, typ.String(),
		))
	}

	return instance, false, nil
}

// remove drops an entry whose construction failed. The caller holds e.mutex.
func (c *DefaultContainer) remove(e *entry) {
	e.removed = true
	c.mutex.Lock()
	if c.entries[e.key] == e {
		delete(c.entries, e.key)
	}
	c.mutex.Unlock()
}

func (c *DefaultContainer) logger() *logger.Logger {
	if c.log != nil {
		return c.log
	}
	return logger.WithComponent(componentName)
}

// Has reports whether an instance has been constructed for key.
func (c *DefaultContainer) Has(key any) bool {
	if checkKey(key) != nil {
		return false
	}
	c.mutex.RLock()
	e, exists := c.entries[key]
	c.mutex.RUnlock()
	if !exists {
		return false
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.initialized
}

// Len returns the number of constructed instances.
func (c *DefaultContainer) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.order)
}

// Entries returns the constructed entries in construction order.
func (c *DefaultContainer) Entries() []EntryInfo {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make([]EntryInfo, 0, len(c.order))
	for _, e := range c.order {
		result = append(result, EntryInfo{Key: e.key, Type: e.typ.String()})
	}
	return result
}

// checkKey rejects keys that would panic as map keys.
func checkKey(key any) error {
	if key == nil {
		return errors.InvalidKey(key)
	}
	if !reflect.ValueOf(key).Comparable() {
		return errors.InvalidKey(key)
	}
	return nil
}

func isNilType(typ Type) bool {
	if typ == nil {
		return true
	}
	v := reflect.ValueOf(typ)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
