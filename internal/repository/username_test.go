package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldUsername(t *testing.T) {
	assert.Equal(t, FoldUsername("alice"), FoldUsername("ALICE"))
	assert.Equal(t, FoldUsername("alice"), FoldUsername("  Alice "))
	assert.Equal(t, FoldUsername("strasse"), FoldUsername("STRASSE"))
	assert.NotEqual(t, FoldUsername("alice"), FoldUsername("alicia"))
}
