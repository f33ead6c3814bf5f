package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goonworks/goonbot/models"
)

func BenchmarkJoinQueue(b *testing.B) {
	ctx := context.Background()
	st := NewSQLiteStore(Params{})
	st.SetFlushDebounce(1 * time.Hour) // Disable auto-flush for benchmark
	if err := st.Open(ctx); err != nil {
		b.Fatalf("open: %v", err)
	}
	defer st.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		entry := models.QueueEntry{
			Activity: "Last Wish",
			UserID:   fmt.Sprintf("user-%d", i),
		}
		if err := st.JoinQueue(ctx, entry); err != nil {
			b.Fatalf("join: %v", err)
		}
	}
}

func BenchmarkListQueue(b *testing.B) {
	ctx := context.Background()
	st := NewSQLiteStore(Params{})
	st.SetFlushDebounce(1 * time.Hour)
	if err := st.Open(ctx); err != nil {
		b.Fatalf("open: %v", err)
	}
	defer st.Close()

	for i := 0; i < 100; i++ {
		entry := models.QueueEntry{
			Activity: "Last Wish",
			UserID:   fmt.Sprintf("user-%d", i),
		}
		if err := st.JoinQueue(ctx, entry); err != nil {
			b.Fatalf("join: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := st.ListQueue(ctx, "Last Wish"); err != nil {
			b.Fatalf("list: %v", err)
		}
	}
}
