package main

import (
	"github.com/hasanasadov/hasscreen/internal/cli"
	"github.com/hasanasadov/hasscreen/internal/logging"
)

func main() {
	logging.Init(logging.Config{Level: "warn", ServiceName: "hasscreen"})
	cli.Execute()
}
