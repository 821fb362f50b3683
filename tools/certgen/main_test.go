package main

import (
	"reflect"
	"testing"
)

func TestSplitHosts(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"localhost,127.0.0.1", []string{"localhost", "127.0.0.1"}},
		{" site.example , ,::1 ", []string{"site.example", "::1"}},
		{"", nil},
	}
	for _, c := range cases {
		if got := splitHosts(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitHosts(%q) = %v; want %v", c.in, got, c.want)
		}
	}
}
