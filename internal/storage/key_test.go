package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "register/alice/1700000000123.jpg",
		ObjectKey(PurposeRegister, "alice", 1700000000123))
	assert.Equal(t, "recognize/7b6f0c8e/1700000000124.jpg",
		ObjectKey(PurposeRecognize, "7b6f0c8e", 1700000000124))
}

func TestObjectKey_DistinctTimestampsNeverCollide(t *testing.T) {
	a := ObjectKey(PurposeRegister, "alice", 1700000000123)
	b := ObjectKey(PurposeRegister, "alice", 1700000000124)
	assert.NotEqual(t, a, b)
}
