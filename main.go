package main

import (
	"github.com/tokengraph/indexer/cmd"
)

func main() {
	cmd.Execute()
}
