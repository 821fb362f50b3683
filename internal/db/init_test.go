package db_test

import (
	"strings"
	"testing"

	"github.com/atinyakov/ourstory/internal/db"
)

func TestInitPostgres_Unreachable(t *testing.T) {
	cases := []struct {
		name string
		dsn  string
	}{
		{"unknown keys", "some=random"},
		{"closed port", "host=127.0.0.1 port=1 sslmode=disable connect_timeout=1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			feeds, err := db.InitPostgres(tc.dsn)
			if err == nil {
				feeds.Close()
				t.Fatalf("InitPostgres(%q) did not return error", tc.dsn)
			}
			if !strings.Contains(err.Error(), "ping postgres") {
				t.Errorf("InitPostgres(%q) error = %q; want ping failure", tc.dsn, err.Error())
			}
		})
	}
}
