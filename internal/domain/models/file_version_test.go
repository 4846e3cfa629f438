package models

import "testing"

func TestFileKeyString(t *testing.T) {
	zero, one := int64(0), int64(1)

	tests := []struct {
		name string
		key  FileKey
		want string
	}{
		{"root", NewFileKey(nil, "a.txt"), "root/a.txt"},
		{"folder", NewFileKey(&one, "a.txt"), "1/a.txt"},
		{"folder zero", NewFileKey(&zero, "a.txt"), "0/a.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}

	if NewFileKey(nil, "a.txt").String() == NewFileKey(&zero, "a.txt").String() {
		t.Error("root and folder 0 must not share a key")
	}
}
