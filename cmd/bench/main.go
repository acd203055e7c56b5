package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/notebook"
	"github.com/aretw0/notebook/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to generate")
	reminders := flag.Int("reminders", 200, "Number of reminders to generate")
	adapter := flag.String("adapter", notebook.AdapterFS, "Storage adapter to benchmark")
	keep := flag.Bool("keep", false, "Keep the benchmark notebook after running")
	flag.Parse()

	// 1. Setup
	benchDir, err := os.MkdirTemp("", "notebook_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.TODO()

	fmt.Printf("Generating %d notes and %d reminders in %s...\n", *count, *reminders, benchDir)
	startGen := time.Now()
	if err := generate(ctx, benchDir, *adapter, *count, *reminders); err != nil {
		panic(err)
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	// 2. Cold: a fresh process reads every collection from storage
	nb, err := notebook.New(benchDir, notebook.WithAdapter(*adapter), notebook.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	defer nb.Close()

	fmt.Println("Rendering home (Run 1 - Cold)...")
	startCold := time.Now()
	home := nb.Home(ctx)
	cold := time.Since(startCold)
	fmt.Printf("Run 1 Result: %v (Blocks: %d, Reminders: %d+%d)\n", cold, len(home.Blocks), len(home.Reminders), home.Overflow)

	// 3. Warm: the hub serves the same values from memory
	fmt.Println("Rendering home (Run 2 - Warm)...")
	startWarm := time.Now()
	home = nb.Home(ctx)
	warm := time.Since(startWarm)
	fmt.Printf("Run 2 Result: %v (Blocks: %d)\n", warm, len(home.Blocks))

	// 4. One mutation rewrites the whole collection
	startWrite := time.Now()
	if _, err := nb.CreateNote(ctx, "bench", "one more", ""); err != nil {
		panic(err)
	}
	write := time.Since(startWrite)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%s, %d notes):\n", *adapter, *count)
	fmt.Printf("  Cold:   %v\n", cold)
	fmt.Printf("  Warm:   %v\n", warm)
	fmt.Printf("  Create: %v\n", write)
	fmt.Printf("--------------------------------------------------\n")
}

// generate writes the collections in one Set each, the way an existing
// notebook would already hold them.
func generate(ctx context.Context, dir, adapter string, count, reminders int) error {
	storage, err := notebook.Init(dir, notebook.WithAdapter(adapter))
	if err != nil {
		return err
	}
	if c, ok := storage.(interface{ Close() error }); ok {
		defer c.Close()
	}

	notes := make([]core.Note, 0, count)
	for i := 0; i < count; i++ {
		id := core.ID(fmt.Sprintf("n%d", i))
		var n core.Note
		if i%5 == 0 {
			n, err = core.NewList(id, fmt.Sprintf("List %d", i), []string{"milk", "eggs", ""}, "")
		} else {
			n, err = core.NewNote(id, fmt.Sprintf("Note %d", i), "This is a test note.", "")
		}
		if err != nil {
			return err
		}
		notes = append(notes, n)
	}

	rems := make([]core.Reminder, 0, reminders)
	base := time.Now()
	for i := 0; i < reminders; i++ {
		r, err := core.NewReminder(core.ID(fmt.Sprintf("r%d", i)), fmt.Sprintf("Reminder %d", i), base.Add(time.Duration(i)*time.Hour), "")
		if err != nil {
			return err
		}
		rems = append(rems, r)
	}

	for key, v := range map[string]any{core.KeyNotes: notes, core.KeyReminders: rems} {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if err := storage.Set(ctx, key, string(b)); err != nil {
			return fmt.Errorf("failed to write %s: %w", filepath.Join(dir, key), err)
		}
	}
	return nil
}
