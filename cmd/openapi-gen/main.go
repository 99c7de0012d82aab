// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iso15926vis/rdlvis/internal/catalog"
	"github.com/iso15926vis/rdlvis/internal/graph"
	"github.com/iso15926vis/rdlvis/internal/server"
	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
)

func main() {
	spec, err := generateSpec()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := "api/openapi/spec.json"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, spec, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing spec: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI spec written to %s\n", outPath)
}

// generateSpec creates a server with all routes registered and extracts the
// OpenAPI spec that huma generates from the Go type annotations. The catalog
// is empty; handlers are never invoked.
func generateSpec() ([]byte, error) {
	svc := catalog.NewService(catalog.New(nil, graph.Settings{}))
	services, err := server.NewServices(svc, svc)
	if err != nil {
		return nil, err
	}

	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	if err != nil {
		return nil, rdlerr.Errorf(rdlerr.CodeCLISetupFailure, "creating server: %w", err)
	}
	defer func() { _ = srv.Close() }()
	srv.RegisterServices(services)

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}
