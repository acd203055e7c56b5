// Package notebook is the composition root of a local notebook: short notes,
// checklists, dated reminders and folders kept in three JSON collections.
//
// It connects the domain (pkg/core), the storage adapters (pkg/adapters/...)
// and the projections each screen displays (pkg/view).
//
// Features:
//
//   - **Collections as documents**: notes, reminders and folders are each one JSON array under a key.
//   - **Fail-soft loading**: unreadable or corrupt collections load as empty and are logged.
//   - **Pluggable storage**: a directory of JSON files, a SQLite database or memory.
//   - **One authoritative path**: every read and write goes through an in-process hub that publishes changes.
//   - **Optional compare-and-swap**: mutations can retry on conflict instead of overwriting concurrent writes.
//
// Usage:
//
//	nb, err := notebook.New("./data",
//		notebook.WithAdapter(notebook.AdapterSQLite),
//		notebook.WithLogger(logger),
//	)
//
//	// Create a list and render the lists screen
//	_, err = nb.CreateList(ctx, "Groceries", []string{"milk", "eggs"}, "")
//	cards := nb.View.Lists(nb.Notes(ctx))
package notebook
