package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dawnhollow/memquest/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustAppendQuests(t *testing.T, db *DB, names ...string) {
	t.Helper()
	quests := make([]domain.QuestUnit, 0, len(names))
	for _, name := range names {
		quests = append(quests, domain.QuestUnit{
			Name:      name,
			Content:   "content of " + name,
			Creator:   "tester",
			CreatedAt: time.Now(),
		})
	}
	if err := db.AppendQuests(context.Background(), quests); err != nil {
		t.Fatalf("failed to append quests: %v", err)
	}
}

func TestQuestRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustAppendQuests(t, db, "민법-제1조", "민법-제2조")

	names, err := db.ListQuestNames(ctx)
	if err != nil {
		t.Fatalf("ListQuestNames failed: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 quest names, got %v", names)
	}

	q, err := db.FindQuestByName(ctx, "민법-제1조")
	if err != nil {
		t.Fatalf("FindQuestByName failed: %v", err)
	}
	if q == nil || q.Content != "content of 민법-제1조" || q.Creator != "tester" {
		t.Errorf("unexpected quest: %+v", q)
	}

	// Updated content must come back byte for byte, whitespace included.
	updated := "  {민법}은 법이다  \n\n끝"
	if err := db.UpdateQuestContent(ctx, "민법-제1조", updated); err != nil {
		t.Fatalf("UpdateQuestContent failed: %v", err)
	}
	q, err = db.FindQuestByName(ctx, "민법-제1조")
	if err != nil {
		t.Fatalf("FindQuestByName after update failed: %v", err)
	}
	if q.Content != updated {
		t.Errorf("content not returned verbatim: %q", q.Content)
	}
}

func TestFindQuestByNameMissing(t *testing.T) {
	db := openTestDB(t)
	q, err := db.FindQuestByName(context.Background(), "없는퀘스트")
	if err != nil {
		t.Fatalf("FindQuestByName failed: %v", err)
	}
	if q != nil {
		t.Errorf("expected nil for a missing quest, got %+v", q)
	}
}

func TestUpdateQuestContentMissing(t *testing.T) {
	db := openTestDB(t)
	err := db.UpdateQuestContent(context.Background(), "없는퀘스트", "x")
	if !errors.Is(err, domain.ErrQuestNotFound) {
		t.Errorf("expected ErrQuestNotFound, got %v", err)
	}
}

func TestRenameQuestPropagates(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustAppendQuests(t, db, "old-name")

	card := &domain.CardRecord{
		UserID:      "u1",
		QuestName:   "old-name",
		Type:        domain.TypeBlank,
		Level:       3,
		Grade:       domain.GradeRare,
		CardText:    "snapshot",
		CollectedAt: time.Now(),
	}
	if _, err := db.AppendCardRecord(ctx, card); err != nil {
		t.Fatalf("AppendCardRecord failed: %v", err)
	}
	if err := db.UpsertMnemonic(ctx, &domain.Mnemonic{
		UserID: "u1", QuestName: "old-name", Text: "기억법", UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("UpsertMnemonic failed: %v", err)
	}

	if err := db.RenameQuest(ctx, "old-name", "new-name"); err != nil {
		t.Fatalf("RenameQuest failed: %v", err)
	}

	if q, _ := db.FindQuestByName(ctx, "old-name"); q != nil {
		t.Error("old quest name still present after rename")
	}
	q, err := db.FindQuestByName(ctx, "new-name")
	if err != nil || q == nil {
		t.Fatalf("renamed quest not found: %v", err)
	}

	rec, err := db.GetCardRecord(ctx, "u1", "new-name", domain.TypeBlank)
	if err != nil {
		t.Fatalf("GetCardRecord failed: %v", err)
	}
	if rec == nil || rec.Level != 3 || rec.Grade != domain.GradeRare {
		t.Errorf("card did not follow the rename: %+v", rec)
	}
	m, err := db.GetMnemonic(ctx, "u1", "new-name")
	if err != nil {
		t.Fatalf("GetMnemonic failed: %v", err)
	}
	if m == nil || m.Text != "기억법" {
		t.Errorf("mnemonic did not follow the rename: %+v", m)
	}

	if err := db.RenameQuest(ctx, "old-name", "other"); !errors.Is(err, domain.ErrQuestNotFound) {
		t.Errorf("expected ErrQuestNotFound renaming a missing quest, got %v", err)
	}
}

func TestDeleteQuestsByPrefix(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustAppendQuests(t, db, "민법-제1조", "민법-제2조", "형법-제1조")

	for _, quest := range []string{"민법-제1조", "형법-제1조"} {
		if _, err := db.AppendCardRecord(ctx, &domain.CardRecord{
			UserID: "u1", QuestName: quest, Type: domain.TypeBlank,
			Level: 1, Grade: domain.GradeNormal, CollectedAt: time.Now(),
		}); err != nil {
			t.Fatalf("AppendCardRecord failed: %v", err)
		}
		if err := db.UpsertMnemonic(ctx, &domain.Mnemonic{
			UserID: "u1", QuestName: quest, Text: "기억법", UpdatedAt: time.Now(),
		}); err != nil {
			t.Fatalf("UpsertMnemonic failed: %v", err)
		}
	}

	n, err := db.DeleteQuestsByPrefix(ctx, "민법-")
	if err != nil {
		t.Fatalf("DeleteQuestsByPrefix failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}
	names, err := db.ListQuestNames(ctx)
	if err != nil {
		t.Fatalf("ListQuestNames failed: %v", err)
	}
	if len(names) != 1 || names[0] != "형법-제1조" {
		t.Errorf("unexpected survivors: %v", names)
	}

	// Dependent rows under the prefix go with their quests; others survive.
	if rec, err := db.GetCardRecord(ctx, "u1", "민법-제1조", domain.TypeBlank); err != nil || rec != nil {
		t.Errorf("expected card under deleted prefix gone, got %+v (err %v)", rec, err)
	}
	if m, err := db.GetMnemonic(ctx, "u1", "민법-제1조"); err != nil || m != nil {
		t.Errorf("expected mnemonic under deleted prefix gone, got %+v (err %v)", m, err)
	}
	if rec, err := db.GetCardRecord(ctx, "u1", "형법-제1조", domain.TypeBlank); err != nil || rec == nil {
		t.Errorf("expected card outside the prefix to survive, got %+v (err %v)", rec, err)
	}
	if m, err := db.GetMnemonic(ctx, "u1", "형법-제1조"); err != nil || m == nil {
		t.Errorf("expected mnemonic outside the prefix to survive, got %+v (err %v)", m, err)
	}

	// Prefixes containing LIKE metacharacters must match literally.
	mustAppendQuests(t, db, "pct%-a", "pctX-a")
	n, err = db.DeleteQuestsByPrefix(ctx, "pct%")
	if err != nil {
		t.Fatalf("DeleteQuestsByPrefix failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected literal %% match to delete 1, got %d", n)
	}
}

func TestCardRecordLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustAppendQuests(t, db, "q1")

	rec, err := db.GetCardRecord(ctx, "u1", "q1", domain.TypeBlank)
	if err != nil {
		t.Fatalf("GetCardRecord failed: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil before insert, got %+v", rec)
	}

	card := &domain.CardRecord{
		UserID:      "u1",
		QuestName:   "q1",
		Type:        domain.TypeBlank,
		Level:       1,
		Grade:       domain.GradeNormal,
		CardText:    "first snapshot",
		CollectedAt: time.Now(),
	}
	id, err := db.AppendCardRecord(ctx, card)
	if err != nil {
		t.Fatalf("AppendCardRecord failed: %v", err)
	}
	if id == 0 || card.ID != id {
		t.Errorf("insert ID not set on the record: id=%d rec=%+v", id, card)
	}

	card.Level = 2
	card.Grade = domain.GradeLegend
	card.CardText = "second snapshot"
	if err := db.UpdateCardRecord(ctx, card); err != nil {
		t.Fatalf("UpdateCardRecord failed: %v", err)
	}
	rec, err = db.GetCardRecord(ctx, "u1", "q1", domain.TypeBlank)
	if err != nil {
		t.Fatalf("GetCardRecord failed: %v", err)
	}
	if rec.Level != 2 || rec.Grade != domain.GradeLegend || rec.CardText != "second snapshot" {
		t.Errorf("update not persisted: %+v", rec)
	}

	// The abbreviation card is a separate record for the same quest.
	abbrev := &domain.CardRecord{
		UserID: "u1", QuestName: "q1", Type: domain.TypeAbbrev,
		Level: 1, Grade: domain.GradeNormal, CollectedAt: time.Now(),
	}
	if _, err := db.AppendCardRecord(ctx, abbrev); err != nil {
		t.Fatalf("AppendCardRecord for abbrev failed: %v", err)
	}
	records, err := db.ListCardRecords(ctx, "u1")
	if err != nil {
		t.Fatalf("ListCardRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if err := db.DeleteCardRecords(ctx, "u1"); err != nil {
		t.Fatalf("DeleteCardRecords failed: %v", err)
	}
	records, err = db.ListCardRecords(ctx, "u1")
	if err != nil {
		t.Fatalf("ListCardRecords failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records after delete, got %d", len(records))
	}
}

func TestMnemonicUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustAppendQuests(t, db, "q1")

	m, err := db.GetMnemonic(ctx, "u1", "q1")
	if err != nil {
		t.Fatalf("GetMnemonic failed: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil before insert, got %+v", m)
	}

	if err := db.UpsertMnemonic(ctx, &domain.Mnemonic{
		UserID: "u1", QuestName: "q1", Text: "first", UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("UpsertMnemonic failed: %v", err)
	}
	if err := db.UpsertMnemonic(ctx, &domain.Mnemonic{
		UserID: "u1", QuestName: "q1", Text: "second", UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("second UpsertMnemonic failed: %v", err)
	}
	m, err = db.GetMnemonic(ctx, "u1", "q1")
	if err != nil {
		t.Fatalf("GetMnemonic failed: %v", err)
	}
	if m.Text != "second" {
		t.Errorf("upsert did not replace the text: %+v", m)
	}
}

// Concurrent operations share one connection handle; the race detector flags
// this test if the reconnect path ever swaps it out from under a query.
func TestConcurrentAccess(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	mustAppendQuests(t, db, "q1")

	for i := 0; i < 8; i++ {
		if _, err := db.GetOrCreateUser(ctx, fmt.Sprintf("user-%d", i)); err != nil {
			t.Fatalf("GetOrCreateUser failed: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := db.ListQuestNames(ctx); err != nil {
					t.Errorf("ListQuestNames failed: %v", err)
					return
				}
				if _, err := db.GetOrCreateUser(ctx, fmt.Sprintf("user-%d", n)); err != nil {
					t.Errorf("GetOrCreateUser failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestGetOrCreateUser(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, err := db.GetOrCreateUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetOrCreateUser failed: %v", err)
	}
	if u.Level != 1 || u.XP != 0 || u.Title != domain.TitleFor(1) {
		t.Errorf("unexpected starting progress: %+v", u)
	}

	u.Level = 4
	u.XP = 37
	u.Title = domain.TitleFor(4)
	if err := db.UpdateUserLevelXP(ctx, u); err != nil {
		t.Fatalf("UpdateUserLevelXP failed: %v", err)
	}

	again, err := db.GetOrCreateUser(ctx, "u1")
	if err != nil {
		t.Fatalf("second GetOrCreateUser failed: %v", err)
	}
	if again.Level != 4 || again.XP != 37 {
		t.Errorf("progress not persisted: %+v", again)
	}
}
