package enrich

import (
	"reflect"
	"testing"
)

func TestTitleQueries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		title string
		want  []string
	}{
		{
			name:  "plain title",
			title: "Aftersun (2022)",
			want:  []string{"Aftersun"},
		},
		{
			name:  "aka alternative",
			title: "Seven Samurai aka Shichinin no Samurai",
			want:  []string{"Seven Samurai aka Shichinin no Samurai", "Shichinin no Samurai"},
		},
		{
			name:  "double bill",
			title: "Alien + Aliens",
			want:  []string{"Alien + Aliens", "Alien", "Aliens"},
		},
		{
			name:  "event label colon",
			title: "Mystery Movie: Point Break",
			want:  []string{"Point Break"},
		},
		{
			name:  "broadcast brand keeps colon",
			title: "NT Live: Hamlet",
			want:  []string{"NT Live: Hamlet"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := TitleQueries(tc.title)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("TitleQueries(%q) = %v, want %v", tc.title, got, tc.want)
			}
		})
	}
}

func TestShouldSplitOnColon(t *testing.T) {
	t.Parallel()

	if shouldSplitOnColon("NT Live: Hamlet") {
		t.Fatal("broadcast brand prefix must not be split away")
	}
	if !shouldSplitOnColon("Throwback: Heat") {
		t.Fatal("event label prefix should allow the split")
	}
}
