package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/praxislegal/praxis/internal/config"
	"github.com/praxislegal/praxis/internal/logger"
	"github.com/praxislegal/praxis/internal/migration"
	"github.com/praxislegal/praxis/internal/observability"
	"github.com/praxislegal/praxis/internal/server"
	"github.com/praxislegal/praxis/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
