package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/zeusync/corridor/internal/core/catalog"
)

func validateCmd(args []string) error {
	return validateCatalog(os.Stdout, args)
}

// validateCatalog checks the catalog against its schema, builds it and
// reports dead ends plus the digest on w.
func validateCatalog(w io.Writer, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	path := fs.String("catalog", "configs/catalog.yaml", "catalog file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	doc, err := catalog.LoadFile(*path)
	if err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("catalog %s: %w", *path, err)
	}
	c, err := doc.Build()
	if err != nil {
		return err
	}

	deadEnds := 0
	for _, it := range c.Interactables() {
		if len(it.Successors) == 0 {
			deadEnds++
			fmt.Fprintf(w, "warning: interactable %d (%s) has no successors\n", it.ID, it.Name)
		}
	}
	fmt.Fprintf(w, "ok environments=%d interactables=%d dead_ends=%d digest=%s\n",
		len(c.Environments()), len(c.Interactables()), deadEnds, c.Digest())
	return nil
}
