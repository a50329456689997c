package main

import (
	"flag"
	"fmt"
	"os"
)

func usageFunc(fs *flag.FlagSet) func() {
	return func() {
		w := flag.CommandLine.Output()
		fmt.Fprintf(w, "Usage of %s %s:\n", os.Args[0], fs.Name())
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
	}
}
