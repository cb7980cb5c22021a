// Package uidtable maps ExpressLRS UIDs back to the binding phrases that
// produce them.
//
// A UID is the first 6 bytes of MD5("-DMY_BINDING_PHRASE=\"" + phrase + "\"").
// The hash cannot be inverted, so uidtable precomputes it for every phrase of
// a word-list corpus and stores the (UID, phrase) pairs in a compact table
// sorted by UID. Lookups are binary searches over that table.
//
// # Basic Usage
//
// Building a table:
//
//	table, stats, err := uidtable.BuildFile(ctx, words, "table.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Generated %d entries\n", stats.Entries)
//
// Querying a table:
//
//	table, err := uidtable.Open("table.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer table.Close()
//
//	uid, err := uidtable.ParseUID("65,245,33,230,58,226")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if phrase, ok := table.Find(uid); ok {
//	    fmt.Printf("Found binding phrase: %q\n", phrase)
//	}
//
// # Package Structure
//
//   - Public API: builder.go (Build, BuildFile), table.go (Parse, Find), open.go (Open)
//   - Configuration: builder_options.go (BuildOption, With* functions)
//   - Serialization: format.go (layout and codec helpers), table_writer.go
//   - Keys: uid.go (UID, ParseUID), hash.go (Hash6)
//   - Platform: madvise_*.go (OS-specific access hints)
//   - Programs: internal/corpus (word lists), internal/server (HTTP),
//     internal/cli (lookup prompt), internal/startup (load-or-build), cmd/
package uidtable
