//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/titpetric/persist/inject"
	"github.com/titpetric/persist/migrate"
)

func NewEngine(ctx context.Context) (*migrate.Engine, error) {
	wire.Build(inject.Inject)
	return nil, nil
}
