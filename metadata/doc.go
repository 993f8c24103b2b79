// Package metadata holds field constraints registered against struct types
// and checks values against them.
//
// A single Storage is shared by the whole process through
// GetMetadataStorage:
//
//	storage := metadata.GetMetadataStorage()
//	storage.AddConstraint(User{}, "Email", "required,email")
//	err := storage.Validate(user)
package metadata
