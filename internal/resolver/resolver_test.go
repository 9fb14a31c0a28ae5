package resolver

import (
	"errors"
	"net/url"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	return u
}

func TestNewURIInvalidMode(t *testing.T) {
	for _, mode := range []Mode{"", "path", ModeFixed} {
		r, err := NewURI(mode)
		if !errors.Is(err, ErrInvalidMode) {
			t.Errorf("NewURI(%q) error = %v, want ErrInvalidMode", mode, err)
		}
		if r != nil {
			t.Errorf("NewURI(%q) returned a resolver alongside an error", mode)
		}
	}
}

func TestNew(t *testing.T) {
	r, err := New(ModeFixed, "sfom")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.(*Fixed); !ok {
		t.Errorf("New(fixed) = %T, want *Fixed", r)
	}

	if _, err := New("bogus", ""); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("New(bogus) error = %v, want ErrInvalidMode", err)
	}
}

func TestFixedIgnoresURL(t *testing.T) {
	r := NewFixed("sfom")
	for _, raw := range []string{
		"https://example.com/",
		"https://example.com/#other",
		"nfc:///?url=x",
	} {
		unit, err := r.DeriveDatabase(mustParse(t, raw))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if unit != "sfom" {
			t.Errorf("DeriveDatabase(%q) = %q, want sfom", raw, unit)
		}
	}
}

func TestFragmentMode(t *testing.T) {
	r, err := NewURI(ModeFragment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		url     string
		want    string
		wantErr error
	}{
		{"https://collection.cooperhewitt.org/objects/18446725/#chm", "chm", nil},
		{"https://example.com/a?b=c#unit-with-dash", "unit-with-dash", nil},
		{"https://example.com/objects/1", "", ErrMissingFragment},
		{"https://example.com/objects/1#", "", ErrMissingFragment},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := r.DeriveDatabase(mustParse(t, tt.url))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIDMode(t *testing.T) {
	r, err := NewURI(ModeID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		url     string
		want    string
		wantErr error
	}{
		{"https://images.metmuseum.org/?id=A-B-C", "A", nil},
		{"https://example.com/?id=18", "18", nil},
		{"https://example.com/?other=1&id=dept-42", "dept", nil},
		{"https://example.com/?id=", "", nil},
		{"https://example.com/?ident=A-B", "", ErrMissingID},
		{"https://example.com/", "", ErrMissingID},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := r.DeriveDatabase(mustParse(t, tt.url))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveDatabaseIsStable(t *testing.T) {
	r, _ := NewURI(ModeFragment)
	u := mustParse(t, "https://example.com/o/1#unit")
	first, _ := r.DeriveDatabase(u)
	for i := 0; i < 10; i++ {
		if got, _ := r.DeriveDatabase(u); got != first {
			t.Fatalf("resolution changed between calls: %q vs %q", first, got)
		}
	}
}
