// Package main provides a generator that extracts CLI, configuration, custom
// rule and lint rule metadata from the claudelint source and generates
// markdown documentation.
//
// Usage:
//
//	go run ./scripts/gendocs -gen=cli -outdir=docs/cli
//	go run ./scripts/gendocs -gen=config -outdir=docs/configuration
//	go run ./scripts/gendocs -gen=starlark -outdir=docs/custom-rules
//	go run ./scripts/gendocs -gen=rules -outdir=docs/rules
//	go run ./scripts/gendocs -gen=all
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

var (
	genFlag    = flag.String("gen", "all", "what to generate: cli, config, starlark, rules, all")
	outDirFlag = flag.String("outdir", "", "output directory (defaults based on gen type)")
)

// generator writes one documentation section into a directory.
type generator struct {
	name   string
	subdir string
	run    func(outDir string) error
}

var generators = []generator{
	{name: "cli", subdir: "cli", run: generateCLIDocs},
	{name: "config", subdir: "configuration", run: generateConfigDocs},
	{name: "starlark", subdir: "custom-rules", run: generateStarlarkDocs},
	{name: "rules", subdir: "rules", run: generateRuleDocs},
}

func main() {
	flag.Parse()

	// Find project root (where go.mod is)
	projectRoot, err := findProjectRoot()
	if err != nil {
		log.Fatalf("failed to find project root: %v", err)
	}

	log.Printf("Project root: %s", projectRoot)

	if err := generate(*genFlag, *outDirFlag, filepath.Join(projectRoot, "docs")); err != nil {
		log.Fatal(err)
	}

	log.Println("Done!")
}

// generate runs the generator named gen, or all of them. outDir overrides
// the output directory of a single generator; otherwise each writes to its
// own directory under docsRoot.
func generate(gen, outDir, docsRoot string) error {
	ran := false
	for _, g := range generators {
		if gen != "all" && gen != g.name {
			continue
		}
		dir := filepath.Join(docsRoot, g.subdir)
		if outDir != "" && gen != "all" {
			dir = outDir
		}
		if err := g.run(dir); err != nil {
			return fmt.Errorf("failed to generate %s docs: %w", g.name, err)
		}
		ran = true
	}
	if !ran {
		return fmt.Errorf("unknown -gen value: %s (use: cli, config, starlark, rules, all)", gen)
	}
	return nil
}

// findProjectRoot walks up from current directory to find go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
