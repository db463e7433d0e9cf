package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type noopJob struct{ name string }

func (n noopJob) Name() string { return n.name }

func (noopJob) Run(context.Context) error { return nil }

func TestRegistry_PreservesOrderAndSkipsNil(t *testing.T) {
	registry := NewRegistry(noopJob{name: "first"}, nil)
	registry.Register(noopJob{name: "second"})
	registry.Register(nil)

	jobs := registry.Jobs()

	assert.Len(t, jobs, 2)
	assert.Equal(t, "first", jobs[0].Name())
	assert.Equal(t, "second", jobs[1].Name())
}

func TestRegistry_JobsReturnsCopy(t *testing.T) {
	registry := NewRegistry(noopJob{name: "first"})

	jobs := registry.Jobs()
	jobs[0] = noopJob{name: "changed"}

	assert.Equal(t, "first", registry.Jobs()[0].Name())
}
