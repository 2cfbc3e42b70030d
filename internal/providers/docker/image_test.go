package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveImage(t *testing.T) {
	assert.Equal(t, defaultImage, resolveImage(""))
	assert.Equal(t, "boxed-python:3.9", resolveImage("python-data-science"))
	assert.Equal(t, "ubuntu:22.04", resolveImage("ubuntu:22.04"))
	assert.Equal(t, "myregistry.io/team/img:tag", resolveImage("myregistry.io/team/img:tag"))
	assert.Equal(t, "alpine:latest", resolveImage("alpine"))
}
