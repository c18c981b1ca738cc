package model

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "105.1", want: 105100},
		{in: "110.3", want: 110300},
		{in: "0", want: 0},
		{in: " 206.125 ", want: 206125},
		{in: "42", want: 42000},
		{in: "0.001", want: 1},
		{in: "9223372036854775.807", want: 9223372036854775807},
		{in: "9223372036854775.808", wantErr: true},
		{in: "9300000000000000", wantErr: true},
		{in: "1.0005", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParsePrice(%q) = %d, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrice(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParsePrice(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{105100, "105.1"},
		{206125, "206.125"},
		{42000, "42"},
		{0, "0"},
	}

	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
