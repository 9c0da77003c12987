package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"crewlink-server/services/messaging-api/internal/utils/platformerrors"
)

func setupLedger(t *testing.T) (*Ledger, *memStore, *Conversation) {
	t.Helper()
	store := newMemStore()
	contractor := testContractor(1)
	sub := testSubcontractor(2)
	dir := NewDirectory(store, newMemUsers(contractor, sub))
	conv, _, err := dir.GetOrCreate(context.Background(), contractor, sub.ID)
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	return NewLedger(store.Messages(), store), store, conv
}

func TestAppendIncrementsRecipientUnread(t *testing.T) {
	ledger, store, conv := setupLedger(t)

	msg, recipients, err := ledger.Append(context.Background(), conv, 1, "hello", ContentTypeText, nil)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if msg.PublicID == "" || !strings.HasPrefix(msg.PublicID, "msg_") {
		t.Errorf("PublicID = %q, want msg_ prefix", msg.PublicID)
	}
	if len(recipients) != 1 || recipients[0] != 2 {
		t.Errorf("recipients = %v, want [2]", recipients)
	}

	recipient, err := store.FindParticipant(context.Background(), conv.ID, 2)
	if err != nil {
		t.Fatalf("FindParticipant() error = %v", err)
	}
	if recipient.UnreadCount != 1 {
		t.Errorf("recipient unread = %d, want 1", recipient.UnreadCount)
	}

	sender, err := store.FindParticipant(context.Background(), conv.ID, 1)
	if err != nil {
		t.Fatalf("FindParticipant() error = %v", err)
	}
	if sender.UnreadCount != 0 {
		t.Errorf("sender unread = %d, want 0", sender.UnreadCount)
	}
}

func TestAppendValidation(t *testing.T) {
	ledger, _, conv := setupLedger(t)

	tests := []struct {
		name        string
		body        string
		contentType ContentType
	}{
		{name: "empty body", body: "", contentType: ContentTypeText},
		{name: "whitespace body", body: "   \n\t", contentType: ContentTypeText},
		{name: "oversized body", body: strings.Repeat("a", maxBodyLength+1), contentType: ContentTypeText},
		{name: "unknown content type", body: "hello", contentType: ContentType("video")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ledger.Append(context.Background(), conv, 1, tt.body, tt.contentType, nil)
			if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation) {
				t.Errorf("Append() error = %v, want validation error", err)
			}
		})
	}
}

func TestAppendDefaultsToText(t *testing.T) {
	ledger, _, conv := setupLedger(t)

	msg, _, err := ledger.Append(context.Background(), conv, 1, "hello", "", nil)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if msg.ContentType != ContentTypeText {
		t.Errorf("ContentType = %q, want %q", msg.ContentType, ContentTypeText)
	}
}

func TestListPagePagination(t *testing.T) {
	ledger, _, conv := setupLedger(t)

	var publicIDs []string
	for i := 0; i < 7; i++ {
		msg, _, err := ledger.Append(context.Background(), conv, 1, fmt.Sprintf("message %d", i), ContentTypeText, nil)
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		publicIDs = append(publicIDs, msg.PublicID)
	}

	// First page: the 3 newest, oldest first within the page.
	page, err := ledger.ListPage(context.Background(), conv, "", 3)
	if err != nil {
		t.Fatalf("ListPage() error = %v", err)
	}
	if len(page.Messages) != 3 {
		t.Fatalf("len(page) = %d, want 3", len(page.Messages))
	}
	if !page.HasMore {
		t.Error("HasMore = false, want true")
	}
	for i, want := range publicIDs[4:] {
		if page.Messages[i].PublicID != want {
			t.Errorf("page[%d] = %q, want %q", i, page.Messages[i].PublicID, want)
		}
	}

	// Second page starts before the oldest message of the first page.
	page, err = ledger.ListPage(context.Background(), conv, page.Messages[0].PublicID, 3)
	if err != nil {
		t.Fatalf("ListPage() second page error = %v", err)
	}
	if len(page.Messages) != 3 {
		t.Fatalf("len(second page) = %d, want 3", len(page.Messages))
	}
	if !page.HasMore {
		t.Error("second page HasMore = false, want true")
	}
	for i, want := range publicIDs[1:4] {
		if page.Messages[i].PublicID != want {
			t.Errorf("second page[%d] = %q, want %q", i, page.Messages[i].PublicID, want)
		}
	}

	// Final page holds the single oldest message.
	page, err = ledger.ListPage(context.Background(), conv, page.Messages[0].PublicID, 3)
	if err != nil {
		t.Fatalf("ListPage() final page error = %v", err)
	}
	if len(page.Messages) != 1 || page.Messages[0].PublicID != publicIDs[0] {
		t.Fatalf("final page = %v, want just the oldest message", page.Messages)
	}
	if page.HasMore {
		t.Error("final page HasMore = true, want false")
	}
}

func TestListPageUnknownCursor(t *testing.T) {
	ledger, _, conv := setupLedger(t)

	_, err := ledger.ListPage(context.Background(), conv, "msg_missing", 10)
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("ListPage(unknown cursor) error = %v, want not found", err)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultPageLimit},
		{in: -5, want: DefaultPageLimit},
		{in: 1, want: 1},
		{in: 50, want: 50},
		{in: MaxPageLimit, want: MaxPageLimit},
		{in: MaxPageLimit + 1, want: MaxPageLimit},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMarkReadResetsUnreadAndStampsReadAt(t *testing.T) {
	ledger, store, conv := setupLedger(t)

	for i := 0; i < 3; i++ {
		if _, _, err := ledger.Append(context.Background(), conv, 1, fmt.Sprintf("message %d", i), ContentTypeText, nil); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	receipt, recipients, err := ledger.MarkRead(context.Background(), conv, 2, nil)
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if len(recipients) != 1 || recipients[0] != 1 {
		t.Errorf("recipients = %v, want [1]", recipients)
	}
	if receipt.LastReadMessageID == nil {
		t.Fatal("LastReadMessageID is nil")
	}

	reader, err := store.FindParticipant(context.Background(), conv.ID, 2)
	if err != nil {
		t.Fatalf("FindParticipant() error = %v", err)
	}
	if reader.UnreadCount != 0 {
		t.Errorf("reader unread = %d, want 0", reader.UnreadCount)
	}
	if reader.LastReadAt == nil {
		t.Error("LastReadAt is nil")
	}

	for _, m := range store.messages {
		if m.ReadAt == nil {
			t.Errorf("message %q not stamped read", m.PublicID)
		}
	}
}

func TestMarkReadUpToSpecificMessage(t *testing.T) {
	ledger, store, conv := setupLedger(t)

	var ids []string
	for i := 0; i < 3; i++ {
		msg, _, err := ledger.Append(context.Background(), conv, 1, fmt.Sprintf("message %d", i), ContentTypeText, nil)
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		ids = append(ids, msg.PublicID)
	}

	receipt, _, err := ledger.MarkRead(context.Background(), conv, 2, &ids[1])
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if receipt.LastReadMessageID == nil || *receipt.LastReadMessageID != ids[1] {
		t.Errorf("LastReadMessageID = %v, want %q", receipt.LastReadMessageID, ids[1])
	}

	// The cursor pins the participant's read marker; read_at stamping still
	// covers every unread counterpart message.
	for _, m := range store.messages {
		if m.ReadAt == nil {
			t.Errorf("message %q not stamped read", m.PublicID)
		}
	}

	bogus := "msg_missing"
	if _, _, err := ledger.MarkRead(context.Background(), conv, 2, &bogus); !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("MarkRead(bogus cursor) error = %v, want not found", err)
	}
}

func TestMarkReadEmptyConversation(t *testing.T) {
	ledger, _, conv := setupLedger(t)

	receipt, _, err := ledger.MarkRead(context.Background(), conv, 2, nil)
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if receipt.LastReadMessageID != nil {
		t.Errorf("LastReadMessageID = %v, want nil for empty conversation", *receipt.LastReadMessageID)
	}
}
