// inspect is an operator tool that opens a workspace snapshot database and
// prints what it holds: prompt, user and run counts, plus the seed marker.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/logger"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/sandbox"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/store"
)

func main() {
	var p string
	var verbose bool
	flag.StringVar(&p, "path", "", "snapshot db path to inspect")
	flag.BoolVar(&verbose, "v", false, "list prompt ids and titles")
	flag.Parse()
	if p == "" {
		fmt.Fprintln(os.Stderr, "--path required")
		os.Exit(2)
	}
	logger.InitWithLevel("error")

	snap, err := store.OpenSnapshot(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open snapshot: %v\n", err)
		os.Exit(1)
	}
	defer snap.Close()

	prompts, err := snap.LoadPrompts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load prompts: %v\n", err)
		os.Exit(1)
	}
	runs, err := snap.ListRuns(sandbox.MaxRunsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load runs: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("path:    %s\n", p)
	fmt.Printf("seeded:  %v\n", snap.Seeded())
	fmt.Printf("prompts: %d\n", len(prompts))
	fmt.Printf("runs:    %d (showing up to %d)\n", len(runs), sandbox.MaxRunsLimit)
	if verbose {
		for _, pr := range prompts {
			fmt.Printf("  %s  %q by %s (%d comments, %d forks)\n",
				pr.ID, pr.Title, pr.Author.Name, len(pr.Comments), pr.Forks)
		}
	}
}
