package device

import "testing"

func TestNormalizeEUI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "a84041fdfe2b9f2b", "a84041fdfe2b9f2b"},
		{"uppercase", "A84041FDFE2B9F2B", "a84041fdfe2b9f2b"},
		{"dash separators", "A8-40-41-FD-FE-2B-9F-2B", "a84041fdfe2b9f2b"},
		{"colon separators", "a8:40:41:fd:fe:2b:9f:2b", "a84041fdfe2b9f2b"},
		{"spaces and mixed case", " A8 40 41 fd FE 2b 9F 2b ", "a84041fdfe2b9f2b"},
		{"empty", "", ""},
		{"no hex content", "zz--::", ""},
		{"non-hex letters dropped", "g1h2i3", "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeEUI(tt.in); got != tt.want {
				t.Errorf("NormalizeEUI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
