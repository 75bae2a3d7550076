package db

import (
	"strings"
	"testing"
)

func TestNormalizeDSN(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{`"postgres://u:p@h:5432/db?sslmode=disable"`, "postgres://u:p@h:5432/db?sslmode=disable"},
		{"host=h   user=u dbname=db", "host=h user=u dbname=db sslmode=disable"},
		{"host=h user=u dbname=db sslmode=require", "host=h user=u dbname=db sslmode=require"},
		{"not a dsn", "not a dsn"},
	}
	for _, c := range cases {
		if got := NormalizeDSN(c.in); got != c.want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestToURLDSN(t *testing.T) {
	got := ToURLDSN("host=db port=5432 user=traiteur password=secret dbname=traiteur sslmode=disable")
	want := "postgres://traiteur:secret@db:5432/traiteur?sslmode=disable"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if in := "host=db dbname=x"; ToURLDSN(in) != in {
		t.Fatalf("incomplete DSN should be returned unchanged")
	}
	if in := "postgres://u@h/db"; ToURLDSN(in) != in {
		t.Fatalf("URL DSN should be returned unchanged")
	}
}

func TestMaskDSN(t *testing.T) {
	if got := MaskDSN("host=db password=secret dbname=x"); got != "host=db password=*** dbname=x" {
		t.Fatalf("unexpected mask %q", got)
	}
	if got := MaskDSN("postgres://u:secret@h/db"); strings.Contains(got, "secret") || !strings.HasPrefix(got, "postgres://u:") {
		t.Fatalf("unexpected mask %q", got)
	}
}
