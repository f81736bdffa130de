package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFolderKey(t *testing.T) {
	assert.Equal(t, "arrangements/Concert Band", folderKey("arrangements", "Concert Band"))
	assert.Equal(t, "arrangements/Concert Band", folderKey("/arrangements/", "Concert Band"))
	assert.Equal(t, "Concert Band", folderKey("", "Concert Band"))
	assert.Equal(t, "arrangements/Concert Band/Bolero", folderKey("arrangements/Concert Band", "Bolero"))
}
