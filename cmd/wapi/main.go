package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fivetwenty-io/wapi/cmd/wapi/commands"
	"github.com/golang/glog"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// glog writes to files unless told otherwise.
	_ = flag.Set("logtostderr", "true")
	_ = flag.CommandLine.Parse(nil)

	defer glog.Flush()

	err := commands.NewRootCommand(version, commit, date).Execute()
	if err != nil {
		glog.Flush()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
