// Copyright 2023 The Stamp Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// stampproof is a small command-line front end for the stamp library: it digests
// a document, collects signatures from the configured calendars, and verifies
// proofs against the original data.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	stamp "github.com/in-toto/go-stamp"
	"github.com/in-toto/go-stamp/config"
	"github.com/in-toto/go-stamp/log"
	"github.com/in-toto/go-stamp/notary/calendar"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("STAMPPROOF_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := log.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Bad log level %q: %v\n", cfg.LogLevel, err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "stamp":
		err = runStamp(cfg, os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "schema":
		err = runSchema()
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s stamp <file> | verify <file> <proof> | schema\n", os.Args[0])
}

func runStamp(cfg config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("stamp requires exactly one file argument")
	}

	path := args[0]
	ts := stamp.New(stamp.WithDataSource(stamp.FileSource{Path: path}))
	if err := ts.AddAlgorithms(cfg.Algorithms...); err != nil {
		return fmt.Errorf("failed to digest %v: %w", path, err)
	}

	ctx := context.Background()
	for _, url := range cfg.Calendars {
		client := calendar.New(url, calendar.WithCacheTTL(cfg.CacheTTL))
		for _, algorithm := range ts.Digests.Algorithms() {
			sigs, err := client.Signatures(ctx, ts.Digests[algorithm])
			if err != nil {
				log.Warnf("calendar %v: %v", url, err)
				continue
			}

			for _, sig := range sigs {
				ts.AddSignature(sig)
			}
		}
	}

	proof, err := json.MarshalIndent(ts.ToPrimitives(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode proof: %w", err)
	}

	proofPath := path + ".stampproof"
	if err := os.WriteFile(proofPath, append(proof, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write proof: %w", err)
	}

	fmt.Printf("Wrote %v (%v algorithms, %v signatures)\n", proofPath, len(ts.Digests), len(ts.Signatures))
	return nil
}

func runVerify(args []string) error {
	if len(args) != 2 {
		return errors.New("verify requires a file and a proof argument")
	}

	proofData, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read proof: %w", err)
	}

	var prims stamp.Primitives
	if err := json.Unmarshal(proofData, &prims); err != nil {
		return fmt.Errorf("failed to decode proof: %w", err)
	}

	ts, err := stamp.FromPrimitives(prims, stamp.WithDataSource(stamp.FileSource{Path: args[0]}))
	if err != nil {
		return fmt.Errorf("failed to reconstruct proof: %w", err)
	}

	if err := ts.VerifyData(); err != nil {
		return fmt.Errorf("data verification failed: %w", err)
	}

	if err := ts.VerifyConsistency(); err != nil {
		return fmt.Errorf("consistency verification failed: %w", err)
	}

	fmt.Printf("OK: %v signatures anchored to %v digests\n", len(ts.Signatures), len(ts.Digests))
	return nil
}

func runSchema() error {
	schema, err := json.MarshalIndent(stamp.Primitives{}.Schema(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	fmt.Println(string(schema))
	return nil
}
