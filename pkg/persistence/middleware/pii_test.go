package middleware_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/sections/pkg/domain"
	"github.com/aretw0/sections/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	// Mask attributes containing "email" or "phone"
	mw := middleware.NewPIIMiddleware([]string{"email", "phone"})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	const raw = `<div class="card" data-email="a@b.c" data-tone="light"><p data-phone="555">Hi</p></div>`
	doc := &domain.StoredDocument{ID: "pii", HTML: raw}

	if err := secureStore.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if doc.HTML != raw {
		t.Error("Middleware modified original document in memory!")
	}

	stored, err := underlyingStore.Load(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}

	want := `<div class="card" data-email="***" data-tone="light"><p data-phone="***">Hi</p></div>`
	if stored.HTML != want {
		t.Errorf("Expected %s, got %s", want, stored.HTML)
	}
}

func TestSanitizeMiddleware_StripsScripts(t *testing.T) {
	underlyingStore := NewMockStore()
	store := middleware.NewSanitizeMiddleware()(underlyingStore)

	ctx := context.Background()
	doc := &domain.StoredDocument{ID: "s", HTML: `<div class="card" onclick="x()">Hi<script>alert(1)</script></div>`}
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stored, _ := underlyingStore.Load(ctx, "s")
	if strings.Contains(stored.HTML, "script") || strings.Contains(stored.HTML, "onclick") {
		t.Errorf("Expected sanitized markup, got %s", stored.HTML)
	}
	if !strings.Contains(stored.HTML, `class="card"`) {
		t.Errorf("Expected classes to survive, got %s", stored.HTML)
	}
}

func TestChain_Order(t *testing.T) {
	underlyingStore := NewMockStore()
	store := middleware.Chain(underlyingStore,
		middleware.NewSanitizeMiddleware(),
		middleware.NewPIIMiddleware([]string{"email"}),
	)

	ctx := context.Background()
	if err := store.Save(ctx, &domain.StoredDocument{ID: "c", HTML: `<p data-email="x" onclick="y()">Hi</p>`}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	stored, _ := underlyingStore.Load(ctx, "c")
	if stored.HTML != `<p data-email="***">Hi</p>` {
		t.Errorf("Unexpected stored markup: %s", stored.HTML)
	}
}
