// Package vectorstore holds the vector store backends used by session indexes.
package vectorstore

import "docchat/internal/domain"

// Factory opens an empty store scoped to one index. The name is unique per
// build, so backends that share a server keep indexes apart by it.
type Factory func(name string) (domain.VectorStore, error)
