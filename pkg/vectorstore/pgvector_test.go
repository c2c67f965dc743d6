package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableDDL_UsesConfiguredDimension(t *testing.T) {
	svc := NewPgVectorService(nil, 1024).(*pgvectorService)

	assert.Contains(t, svc.tableDDL(), "vector(1024)")
	assert.NotContains(t, svc.tableDDL(), "vector(768)")
}

func TestEnsureCollection_RejectsMismatchedDimension(t *testing.T) {
	// The mismatch is caught before any row exists, so no db is needed.
	svc := NewPgVectorService(nil, 768)

	err := svc.EnsureCollection(context.Background(), "medical_records", 512)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "512")
	assert.Contains(t, err.Error(), "768")
}
