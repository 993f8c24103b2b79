package metadata

import (
	"github.com/kbukum/ioc/di"
	"github.com/kbukum/ioc/errors"
)

// StorageKey identifies the shared storage in whichever container is in use.
var StorageKey = di.NewToken("metadata.Storage")

// StorageType builds the storage when the default container provides it.
var StorageType = di.Factory(func() (*Storage, error) {
	return NewStorage(), nil
})

// GetMetadataStorage returns the process-wide storage.
//
// The storage is resolved through di.GetFromContainer, so a host container
// installed with di.UseContainer may supply its own. When that container
// answers with nothing and fallback is disabled the result is nil. A failed
// resolution panics with a RESOLUTION_FAILED AppError wrapping the cause,
// because this accessor has no error return.
func GetMetadataStorage() *Storage {
	storage, err := di.Resolve[*Storage](StorageKey, StorageType)
	if err != nil {
		panic(errors.ResolutionFailed(StorageKey, err))
	}
	return storage
}
