// Package textutil provides text processing utilities for filename
// sanitization and catalog query normalization.
//
// The primary use cases are:
//   - Sanitizing generated episode filenames and folder names for safe
//     filesystem use
//   - Normalizing show fragments parsed from filenames into stable catalog
//     query keys and display names
package textutil
