package db_test

import (
	"context"
	"testing"

	"github.com/tencreator/discord-bot/db"
	"github.com/tencreator/discord-bot/testutil"
)

func TestStreamStoreCRUD(t *testing.T) {
	database := testutil.SetupTestDB(t)
	ctx := context.Background()
	store := db.NewStreamStore(database)

	t.Cleanup(func() {
		_ = store.Delete(ctx, "g-crud", "s-crud")
	})

	got, err := store.Find(ctx, "g-crud", "s-crud")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Find() = %+v, want nil before insert", got)
	}

	n := db.TrackedNotification{GuildID: "g-crud", StreamerID: "s-crud", MessageID: "m1", StreamID: "st1"}
	if err := store.Upsert(ctx, n); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err = store.Find(ctx, "g-crud", "s-crud")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got == nil || got.MessageID != "m1" || got.StreamID != "st1" {
		t.Fatalf("Find() = %+v", got)
	}

	// Upserting the same key replaces, never duplicates.
	n.MessageID = "m2"
	n.StreamID = "st2"
	if err := store.Upsert(ctx, n); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	got, err = store.Find(ctx, "g-crud", "s-crud")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got == nil || got.MessageID != "m2" || got.StreamID != "st2" {
		t.Fatalf("Find() after upsert = %+v", got)
	}

	var count int
	if err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stream_notifications WHERE guild_id=$1 AND streamer_id=$2`,
		"g-crud", "s-crud").Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 1 {
		t.Fatalf("row count = %d, want 1", count)
	}

	if err := store.Delete(ctx, "g-crud", "s-crud"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, err = store.Find(ctx, "g-crud", "s-crud")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Find() = %+v, want nil after delete", got)
	}

	// Deleting again is fine.
	if err := store.Delete(ctx, "g-crud", "s-crud"); err != nil {
		t.Fatalf("repeat Delete() error = %v", err)
	}
}

func TestKV(t *testing.T) {
	database := testutil.SetupTestDB(t)
	ctx := context.Background()

	v, err := db.GetKV(ctx, database, "kv-test-absent")
	if err != nil {
		t.Fatalf("GetKV() error = %v", err)
	}
	if v != "" {
		t.Fatalf("GetKV() = %q, want empty for absent key", v)
	}

	if err := db.SetKV(ctx, database, "kv-test-key", "one"); err != nil {
		t.Fatalf("SetKV() error = %v", err)
	}
	if err := db.SetKV(ctx, database, "kv-test-key", "two"); err != nil {
		t.Fatalf("SetKV() overwrite error = %v", err)
	}
	v, err = db.GetKV(ctx, database, "kv-test-key")
	if err != nil {
		t.Fatalf("GetKV() error = %v", err)
	}
	if v != "two" {
		t.Fatalf("GetKV() = %q, want two", v)
	}
}

func TestList(t *testing.T) {
	database := testutil.SetupTestDB(t)
	ctx := context.Background()
	store := db.NewStreamStore(database)

	t.Cleanup(func() {
		_ = store.Delete(ctx, "g-list", "s-list")
	})

	n := db.TrackedNotification{GuildID: "g-list", StreamerID: "s-list", MessageID: "m1", StreamID: "st1"}
	if err := store.Upsert(ctx, n); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rows, err := db.List(ctx, database)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	found := false
	for _, r := range rows {
		if r.GuildID == "g-list" && r.StreamerID == "s-list" {
			found = true
			if r.MessageID != "m1" || r.UpdatedAt.IsZero() {
				t.Fatalf("row = %+v", r)
			}
		}
	}
	if !found {
		t.Fatal("upserted row missing from List()")
	}
}
