package handlers

import "testing"

func TestMatchesAny(t *testing.T) {
	tag := etagFor([]byte(`{"tab":"overview"}`))

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{name: "empty", header: "", want: false},
		{name: "star", header: "*", want: true},
		{name: "exact", header: tag, want: true},
		{name: "weak", header: "W/" + tag, want: true},
		{name: "in list", header: `"abc", ` + tag, want: true},
		{name: "other", header: `"abc"`, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesAny(tt.header, tag); got != tt.want {
				t.Fatalf("matchesAny(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}
