package solana

import (
	"errors"
	"testing"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

func TestKeyRouter_Index(t *testing.T) {
	r := NewKeyRouter([]string{"k0", "k1", "k2"})

	t.Run("deterministic", func(t *testing.T) {
		keys := []string{
			"9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
			"So11111111111111111111111111111111111111112",
			"a",
		}
		for _, k := range keys {
			first, err := r.Index(k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i := 0; i < 10; i++ {
				got, _ := r.Index(k)
				if got != first {
					t.Errorf("Index(%q) = %d, want %d", k, got, first)
				}
			}
			if first < 0 || first >= r.Len() {
				t.Errorf("Index(%q) = %d out of range", k, first)
			}
		}
	})

	t.Run("empty key routes to first credential", func(t *testing.T) {
		got, err := r.Index("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})

	t.Run("known hash", func(t *testing.T) {
		// "ab" hashes to 97*31+98 = 3105
		if h := routeHash("ab"); h != 3105 {
			t.Errorf("expected 3105, got %d", h)
		}
		got, _ := r.Index("ab")
		if got != 3105%3 {
			t.Errorf("expected %d, got %d", 3105%3, got)
		}
	})

	t.Run("hash stays below the modulus", func(t *testing.T) {
		long := ""
		for i := 0; i < 200; i++ {
			long += "z"
		}
		if h := routeHash(long); h >= routePrime {
			t.Errorf("hash %d not reduced", h)
		}
	})
}

func TestKeyRouter_Order(t *testing.T) {
	r := NewKeyRouter([]string{"k0", "k1", "k2"})

	order, err := r.Order("ab") // home index 0
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{0, 1, 2}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}

	order, _ = r.Order("b") // 98 % 3 = 2
	want = []int{2, 0, 1}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestKeyRouter_NoCredentials(t *testing.T) {
	r := NewKeyRouter([]string{"", ""})

	if _, err := r.Index("abc"); !errors.Is(err, entities.ErrNoRoute) {
		t.Errorf("expected ErrNoRoute, got %v", err)
	}
	if _, err := r.Order(""); !errors.Is(err, entities.ErrNoRoute) {
		t.Errorf("expected ErrNoRoute, got %v", err)
	}
}
