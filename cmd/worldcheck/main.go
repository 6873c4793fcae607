// Package main provides worldcheck, a validator for world content
// directories. It loads every region YAML file, checks structural
// invariants, and verifies that all exits resolve.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lantern-engine/lantern/internal/world"
)

func main() {
	worldDir := flag.String("world", "content/world", "world YAML directory to validate")
	flag.Parse()

	regions, err := world.LoadRegionsFromDir(*worldDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "worldcheck: %v\n", err)
		os.Exit(1)
	}

	failed := false
	for _, region := range regions {
		if err := region.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "worldcheck: region %q: %v\n", region.ID, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}

	graph, err := world.NewGraph(regions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "worldcheck: building graph: %v\n", err)
		os.Exit(1)
	}
	if err := graph.ValidateExits(); err != nil {
		fmt.Fprintf(os.Stderr, "worldcheck: %v\n", err)
		os.Exit(1)
	}

	startID := "(none)"
	if start := graph.StartScene(); start != nil {
		startID = start.ID
	}
	fmt.Printf("ok: %d regions, %d scenes, %d items, max score %d, start scene %s\n",
		graph.RegionCount(), graph.SceneCount(), graph.ItemCount(),
		graph.MaxScore(), startID)
}
