package mocks

import (
	"context"
	"testing"

	"github.com/metamuse/musecore/internal/muse"
)

func TestMockRemoteAPI_Defaults(t *testing.T) {
	api := NewMockRemoteAPI()
	ctx := context.Background()

	sess, err := api.GetOrCreateSession(ctx, "muse-1", "0xabc")
	if err != nil {
		t.Fatalf("GetOrCreateSession: %v", err)
	}
	if sess.SubjectID != "muse-1" || !sess.IsActive {
		t.Errorf("unexpected default session: %+v", sess)
	}

	result, err := api.SendMessage(ctx, sess.SessionID, "hello", "0xabc")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.Response == "" {
		t.Error("expected a default response")
	}

	if len(api.SessionCalls()) != 1 || len(api.SendCalls()) != 1 {
		t.Errorf("calls not recorded: %d sessions, %d sends",
			len(api.SessionCalls()), len(api.SendCalls()))
	}
	if api.SendCalls()[0].Text != "hello" {
		t.Errorf("recorded text = %q, want %q", api.SendCalls()[0].Text, "hello")
	}
}

func TestMockRemoteAPI_FuncHooks(t *testing.T) {
	api := NewMockRemoteAPI()
	api.QueryMemoriesFunc = func(context.Context, string, muse.MemoryFilter) ([]muse.MemoryEntry, error) {
		return []muse.MemoryEntry{NewMemoryEntryBuilder().WithID("custom").Build()}, nil
	}

	entries, err := api.QueryMemories(context.Background(), "muse-1", muse.MemoryFilter{})
	if err != nil {
		t.Fatalf("QueryMemories: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "custom" {
		t.Errorf("hook not used: %+v", entries)
	}
}

func TestMockWallet(t *testing.T) {
	wallet := NewMockWallet("0xabc")
	if !wallet.Connected() || wallet.Address() != "0xabc" {
		t.Error("wallet should start connected")
	}

	wallet.Disconnect()
	if wallet.Connected() || wallet.Address() != "" {
		t.Error("wallet should be disconnected")
	}

	wallet.SetAddress("0xdef")
	if !wallet.Connected() || wallet.Address() != "0xdef" {
		t.Error("wallet should reconnect with new address")
	}
}

func TestMemoryEntryBuilder(t *testing.T) {
	entry := NewMemoryEntryBuilder().
		WithID("e-1").
		WithCategory(muse.CategoryCreative).
		WithTags("a", "b").
		WithImportance(0.9).
		Build()

	if entry.ID != "e-1" || entry.Category != muse.CategoryCreative {
		t.Errorf("builder fields not applied: %+v", entry)
	}
	if len(entry.Tags) != 2 || entry.Importance != 0.9 {
		t.Errorf("builder fields not applied: %+v", entry)
	}

	// Distinct builds get distinct default ids.
	a := NewMemoryEntryBuilder().Build()
	b := NewMemoryEntryBuilder().Build()
	if a.ID == b.ID {
		t.Error("default ids collide")
	}
}
