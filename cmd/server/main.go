package main

import (
	"github.com/openlit/litgraph/internal/server"
	"github.com/openlit/litgraph/internal/util"
	"github.com/openlit/litgraph/pkg/logger"
	"github.com/openlit/litgraph/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
