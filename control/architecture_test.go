package control

import "testing"

func TestValidArchitecture(t *testing.T) {
	cases := map[string]bool{
		"all":             true,
		"any":             true,
		"amd64":           true,
		"linux-amd64":     true,
		"windows-msvc-x86": true,
		"":                false,
		"linux--amd64":    false,
		"Linux-AMD64":     false,
	}
	for arch, want := range cases {
		if got := ValidArchitecture(arch); got != want {
			t.Errorf("ValidArchitecture(%q) = %v, want %v", arch, got, want)
		}
	}
}

func TestArchitectureCompatible(t *testing.T) {
	cases := []struct {
		candidate, target string
		want              bool
	}{
		{"all", "linux-amd64", true},
		{"linux-amd64", "linux-amd64", true},
		{"linux-amd64", "windows-amd64", false},
		{"amd64", "linux-amd64", false},
		{"linux-gnu-amd64", "linux-amd64", true},
		{"linux-gnu-amd64", "linux-musl-amd64", false},
		{"source", "linux-amd64", false},
		{"source", "source", true},
	}
	for _, c := range cases {
		if got := ArchitectureCompatible(c.candidate, c.target); got != c.want {
			t.Errorf("ArchitectureCompatible(%q, %q) = %v, want %v", c.candidate, c.target, got, c.want)
		}
	}
}
