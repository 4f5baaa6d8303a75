package auth

import (
	"context"
	"errors"
	"testing"
)

func TestOwnerFromContext(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		ctx := WithOwner(context.Background(), "user-1")
		owner, err := OwnerFromContext(ctx)
		if err != nil {
			t.Fatalf("OwnerFromContext() error = %v", err)
		}
		if owner != "user-1" {
			t.Fatalf("owner = %q, want %q", owner, "user-1")
		}
	})

	t.Run("absent", func(t *testing.T) {
		_, err := OwnerFromContext(context.Background())
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("empty owner", func(t *testing.T) {
		ctx := WithOwner(context.Background(), "")
		_, err := OwnerFromContext(ctx)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("error = %v, want ErrUnauthorized", err)
		}
	})
}

func TestParseTokenPairs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "single pair",
			raw:  "tok-a:user-1",
			want: map[string]string{"tok-a": "user-1"},
		},
		{
			name: "multiple pairs with spaces",
			raw:  "tok-a:user-1, tok-b:user-2",
			want: map[string]string{"tok-a": "user-1", "tok-b": "user-2"},
		},
		{
			name: "empty string",
			raw:  "",
			want: map[string]string{},
		},
		{
			name:    "missing owner",
			raw:     "tok-a",
			wantErr: true,
		},
		{
			name:    "empty token",
			raw:     ":user-1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTokenPairs(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTokenPairs() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d pairs, want %d", len(got), len(tt.want))
			}
			for token, owner := range tt.want {
				if got[token] != owner {
					t.Errorf("token %q resolved to %q, want %q", token, got[token], owner)
				}
			}
		})
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry(map[string]string{
		"tok-a": "user-1",
		"tok-b": "user-2",
	})

	owner, err := reg.Resolve("tok-a")
	if err != nil {
		t.Fatalf("Resolve(tok-a) error = %v", err)
	}
	if owner != "user-1" {
		t.Fatalf("owner = %q, want %q", owner, "user-1")
	}

	// Second resolve should hit the session cache.
	if reg.Sessions().Size() != 1 {
		t.Fatalf("session cache size = %d, want 1", reg.Sessions().Size())
	}
	owner, err = reg.Resolve("tok-a")
	if err != nil || owner != "user-1" {
		t.Fatalf("cached Resolve(tok-a) = %q, %v", owner, err)
	}

	if _, err := reg.Resolve("unknown"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Resolve(unknown) error = %v, want ErrUnauthorized", err)
	}
	if _, err := reg.Resolve(""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Resolve(\"\") error = %v, want ErrUnauthorized", err)
	}
}
