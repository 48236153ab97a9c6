package main

import (
	"github.com/voltree-archive/voltree/voltree/cmd"
)

func main() {
	cmd.Execute()
}
