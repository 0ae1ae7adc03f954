package main

import (
	"github.com/agentsync/agentsync/pkg/cmd"
)

func main() {
	cmd.Execute()
}
