package main

import (
	"koenote-pipeline/cmd/koenote/cmd"
	"koenote-pipeline/internal/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
