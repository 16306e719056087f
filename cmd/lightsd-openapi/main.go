// Package main generates the OpenAPI document for the lightsd HTTP API from
// the shared route definitions, using stub handlers so no daemon is needed.
//
// Usage:
//
//	go run ./cmd/lightsd-openapi > openapi.json
//	go run ./cmd/lightsd-openapi --yaml > openapi.yaml
//	go run ./cmd/lightsd-openapi --output openapi.json
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/lightsd/internal/http/routes"
)

// version is set via ldflags at build time.
var version = "dev"

// generate renders the OpenAPI document as JSON, or YAML when asYAML is set.
func generate(asYAML bool, baseURL string) ([]byte, error) {
	// the router is never served
	api := humachi.New(chi.NewRouter(), routes.NewHumaConfig(version, baseURL))
	routes.Register(api, routes.StubHandlers())

	spec := api.OpenAPI()
	if asYAML {
		return yaml.Marshal(spec)
	}
	return json.MarshalIndent(spec, "", "  ")
}

func main() {
	fs := pflag.NewFlagSet("lightsd-openapi", pflag.ContinueOnError)
	outputFile := fs.StringP("output", "o", "", "Output file path (default: stdout)")
	outputYAML := fs.Bool("yaml", false, "Output as YAML instead of JSON")
	baseURL := fs.String("base-url", "", "Base URL for the API server")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if *showVersion {
		fmt.Println(version)
		return
	}

	data, err := generate(*outputYAML, *baseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshaling OpenAPI spec: %v\n", err)
		os.Exit(1)
	}

	if *outputFile == "" {
		fmt.Print(string(data))
		return
	}
	if err := os.WriteFile(*outputFile, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing to file: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "OpenAPI spec written to %s\n", *outputFile)
}
