package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/openorgs/orgd/internal/migration"
	"github.com/openorgs/orgd/internal/observability"
	"github.com/openorgs/orgd/internal/server"
	"github.com/openorgs/orgd/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
