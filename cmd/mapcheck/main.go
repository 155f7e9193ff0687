// Package main provides mapcheck, a CLI that validates YAML declaration
// tables against the packages they describe: every declared type must exist
// and every declared field must be an exported field of it.
//
// Usage:
//
//	mapcheck -table mappings.yaml ./... ./other/pkg
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/serialmap/serialmap/internal/analyze"
	"github.com/serialmap/serialmap/internal/diagnostic"
	"github.com/serialmap/serialmap/metadata"
)

func main() {
	tablePath := flag.String("table", "", "path to the YAML declaration table")
	flag.Parse()

	if *tablePath == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: mapcheck -table <file> <package patterns>")
		os.Exit(2)
	}

	diags, err := run(*tablePath, flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "mapcheck:", err)
		os.Exit(2)
	}

	for _, w := range diags.Warnings {
		fmt.Println("warning:", w.String())
	}
	for _, e := range diags.Errors {
		fmt.Println("error:", e.String())
	}
	if diags.HasErrors() {
		os.Exit(1)
	}
	fmt.Printf("mapcheck: %s ok\n", *tablePath)
}

func run(tablePath string, patterns []string) (*diagnostic.Diagnostics, error) {
	table, err := metadata.LoadFile(tablePath)
	if err != nil {
		return nil, err
	}

	idx, err := analyze.Load(patterns...)
	if err != nil {
		return nil, err
	}

	return check(table, idx), nil
}

// check validates each declared type and field against the index.
func check(table *metadata.TableFile, idx *analyze.TypeIndex) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	for _, decl := range table.Types {
		info, ok := idx.Lookup(decl.Type)
		if !ok {
			diags.AddError("unknown-type", "declared type not found in loaded packages", decl.Type, "")
			continue
		}

		for _, name := range append(append([]string{}, decl.Include...), decl.Impl) {
			if name == "" {
				continue
			}
			if _, ok := idx.Lookup(name); !ok {
				diags.AddWarning("unresolved-reference", "referenced type not found in loaded packages", decl.Type, name)
			}
		}

		for _, fd := range decl.Fields {
			if fd.Name == "" {
				diags.AddError("missing-field-name", "field declaration without a name", decl.Type, "")
				continue
			}
			if !info.HasField(fd.Name) {
				diags.AddError("unknown-field", "declared field not found on type", decl.Type, fd.Name)
			}
		}
	}

	return diags
}
