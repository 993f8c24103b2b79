// Package di lets a library obtain its collaborators without committing to a
// particular inversion-of-control framework.
//
// The library asks for instances through GetFromContainer. By default they
// come from a process-wide DefaultContainer that builds each instance once,
// on first lookup, and returns the same instance afterwards. A host
// application can install its own container with UseContainer; the library
// then asks that container first.
//
// # Keys and types
//
// A lookup names a key and a Type. The Type builds the instance when the key
// is missing; the key identifies the entry. When no explicit key is needed
// the Type is its own key:
//
//	svcType := di.TypeOf[*Service]()
//	svc, err := di.GetFromContainerType(svcType)
//
//	token := di.NewToken("cache")
//	cache, err := di.GetFromContainer(token, di.Factory(newCache))
//
// # Overriding the container
//
//	di.UseContainer(hostContainer, di.WithFallback(), di.WithFallbackOnErrors())
//
// Without options every answer from the host container is final, including
// errors and falsy values. WithFallback sends falsy answers to the default
// container and WithFallbackOnErrors does the same for errors.
package di
