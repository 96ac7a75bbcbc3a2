// Package main provides a small tool that loads sample books into a
// Shelfmark catalog. Useful for local development and demos.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/logger"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

func main() {
	dataPath := flag.String("data-path", "", "Base path for catalog storage (required)")
	flag.Parse()

	if *dataPath == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -data-path <path>")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: logger.ParseLevel("info")})

	st, err := store.New(filepath.Join(*dataPath, "db"), log.Logger)
	if err != nil {
		log.Fatal("Failed to open store", "error", err)
	}
	defer st.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	books := []*domain.Book{
		{
			Title:  "Dune",
			Author: "Frank Herbert",
			Tags:   []string{"sci-fi", "classic"},
			Series: "Dune Chronicles", NumSeries: 1,
			Description: "Paul Atreides and the desert planet Arrakis.",
			Added:       now.Add(-72 * time.Hour),
			IsRead:      true,
		},
		{
			Title:  "Dune Messiah",
			Author: "Frank Herbert",
			Tags:   []string{"sci-fi"},
			Series: "Dune Chronicles", NumSeries: 2,
			Added: now.Add(-48 * time.Hour),
		},
		{
			Title:  "Foundation",
			Author: "Isaac Asimov",
			Tags:   []string{"sci-fi", "classic"},
			Series: "Foundation", NumSeries: 1,
			Added: now.Add(-24 * time.Hour),
		},
		{
			Title:  "Pride and Prejudice",
			Author: "Jane Austen",
			Tags:   []string{"classic", "romance"},
			Added:  now,
		},
	}

	for _, b := range books {
		if err := st.CreateBook(ctx, b); err != nil {
			log.Error("Failed to seed book", "title", b.Title, "error", err)
			continue
		}
		log.Info("Seeded book", "id", b.ID, "title", b.Title)
	}

	log.Info("Seeding complete", "count", len(books))
}
