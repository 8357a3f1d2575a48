// main is the entry point for the glexport CLI.
package main

import (
	"github.com/huangsam/glexport/cmd"
	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("glexport failed", err)
	}
}
