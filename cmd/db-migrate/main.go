package main

import (
	"github.com/SentimensRG/sigctx"
	"github.com/sirupsen/logrus"

	"github.com/titpetric/persist/migrate"
)

func main() {
	ctx := sigctx.New()

	engine, err := NewEngine(ctx)
	if err != nil {
		logrus.Fatalf("Error creating migration engine: %+v", err)
	}

	logrus.Infof("Migrations: %+v", migrate.List(engine.Migrations()))
	if err := engine.Migrate(ctx); err != nil {
		logrus.Fatalf("An error occured: %+v", err)
	}
}
