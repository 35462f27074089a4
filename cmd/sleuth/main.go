package main

import (
	"fmt"
	"os"

	"github.com/cartwryte/sleuth/internal/cli"
	"github.com/cartwryte/sleuth/internal/config"
	"github.com/cartwryte/sleuth/internal/debugpage"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	reg := debugpage.NewRegistry(debugpage.Options{
		Capturer: debugpage.NewCapturer(config.EditorConfig{}),
	})
	if err := reg.Register(debugpage.NewWriterHandler(os.Stderr, debugpage.TextRenderer{})); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer reg.Recover()

	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}
