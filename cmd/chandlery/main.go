package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/harborworks/chandlery/internal/clock"
	"github.com/harborworks/chandlery/internal/config"
	"github.com/harborworks/chandlery/internal/migration"
	"github.com/harborworks/chandlery/internal/observability"
	"github.com/harborworks/chandlery/internal/server"
	"github.com/harborworks/chandlery/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
