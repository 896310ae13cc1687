/*
Package cultivar generates phrasing variants for scripted dialogue content, on the developer's machine, before anything ships.

A dialogue graph is authored as sequence documents: ordered lists of nodes (messages, choices, conditional branches, cross-sequence jumps) whose display text lives in a per-key phrasing corpus. Cultivar takes a target node, resolves a plausible conversation path to it, builds the surrounding context window, asks a generation backend for new phrasings in the established voice, validates and deduplicates the candidates, and appends the survivors to the corpus. Every attempt is archived in full for reproducibility.

# Concept

The pipeline is deliberately boring: single-threaded, one target at a time, every decision inspectable. The interesting parts are the resolver (a breadth-first search over the dialogue graph that honors branch conditions, choice directives and traversal limits) and the validator (structural checks plus token-set near-duplicate rejection). This Hexagonal Architecture keeps the core decoupled from storage and transport: sequence documents, the corpus, the backend, the cache and the archive all sit behind ports.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/rvielma/cultivar"
		"github.com/rvielma/cultivar/pkg/domain"
	)

	func main() {
		p, err := cultivar.New("pipeline.conf")
		if err != nil {
			log.Fatal(err)
		}

		target := domain.NodeAddress{Sequence: "morning", ID: 4}
		record, err := p.ProcessTarget(context.Background(), target, domain.NewStateSpec("morning"))
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("accepted %d variants", len(record.Accepted))
	}
*/
package cultivar
