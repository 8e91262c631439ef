// Encore - Playlist-Seeded Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/encore

// Command encore builds and inspects the merged track catalog and produces
// recommendations from the command line.
//
//	encore build --source a.csv --source b.parquet
//	encore recommend --seeds playlist.json --top-n 20
//	encore stats
//	encore overlap a.csv b.parquet
//
// Results are printed to stdout as JSON; logs go to stderr. The process
// exits 2 when no seed track matches the catalog and 1 on any other error.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tomtom215/encore/internal/recommend"
)

const (
	exitError   = 1
	exitNoSeeds = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		if errors.Is(err, recommend.ErrEmptySeedSet) {
			fmt.Fprintln(root.ErrOrStderr(), "encore: none of the seed tracks were found in the catalog")
			return exitNoSeeds
		}
		fmt.Fprintln(root.ErrOrStderr(), "encore:", err)
		return exitError
	}
	return 0
}
