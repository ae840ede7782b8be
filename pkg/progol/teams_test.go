package progol

import "testing"

func TestNormalizeTeamName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"León", "leon"},
		{"LEÓN", "leon"},
		{"Club León", "leon"},
		{"FC Juárez", "juarez"},
		{"América", "america"},
		{"Cruz Azul", "cruz azul"},
		{"Atlético de San Luis", "san luis"},
		{"Mazatlán FC", "mazatlan fc"}, // prefixes are only trimmed at the front
		{"  Querétaro  ", "queretaro"},
		{"St. Louis City", "st louis city"},
	}
	for _, tt := range tests {
		if got := NormalizeTeamName(tt.in); got != tt.want {
			t.Errorf("NormalizeTeamName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContestKey(t *testing.T) {
	a := Contest{Home: "Club León", Away: "FC Juárez"}
	b := Contest{Home: "león", Away: "Juarez"}
	if ContestKey(a) != ContestKey(b) {
		t.Errorf("keys differ: %q vs %q", ContestKey(a), ContestKey(b))
	}
	if got := ContestKey(a); got != "leon_vs_juarez" {
		t.Errorf("ContestKey = %q", got)
	}
}
