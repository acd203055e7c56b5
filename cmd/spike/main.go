package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/aretw0/notebook"
)

// Spike settings
const (
	WorkerCount = 50
)

// The spike runs WorkerCount concurrent CreateNote calls against one notes
// collection and counts how many notes survive. With last-writer-wins some
// writers overwrite each other; with compare-and-swap every note survives.
func main() {
	adapter := flag.String("adapter", notebook.AdapterFS, "Storage adapter")
	flag.Parse()

	log.Println("Starting spike: concurrent writers on one collection")

	for _, cas := range []bool{false, true} {
		tmpDir, err := os.MkdirTemp("", "notebook-spike-*")
		if err != nil {
			log.Fatalf("failed to create temp dir: %v", err)
		}
		survived, took := run(tmpDir, *adapter, cas)
		os.RemoveAll(tmpDir)

		mode := "last-writer-wins"
		if cas {
			mode = "compare-and-swap"
		}
		log.Printf("%-17s %d/%d notes survived in %v", mode, survived, WorkerCount, took)
	}
}

func run(dir, adapter string, cas bool) (int, time.Duration) {
	nb, err := notebook.New(dir,
		notebook.WithAdapter(adapter),
		notebook.WithCompareAndSwap(cas),
		notebook.WithMaxRetries(WorkerCount),
	)
	if err != nil {
		log.Fatalf("failed to open notebook: %v", err)
	}
	defer nb.Close()

	ctx := context.Background()
	start := time.Now()

	var wg sync.WaitGroup
	wg.Add(WorkerCount)
	for i := 0; i < WorkerCount; i++ {
		go func(id int) {
			defer wg.Done()
			if _, err := nb.CreateNote(ctx, fmt.Sprintf("Note %d", id), "spike", ""); err != nil {
				log.Printf("[error] writer %d: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	return len(nb.Notes(ctx)), time.Since(start)
}
