package testutil

import (
	"errors"
	"reflect"
	"testing"
)

type verdict struct {
	Input    string
	Accepted bool
}

func TestJS(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want string
	}{
		{
			name: "simple struct",
			arg:  verdict{"0110", true},
			want: `{"Input":"0110","Accepted":true}`,
		},
		{
			name: "unmarshalable",
			arg:  func() {},
			want: "(func())",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JS(tt.arg)
			if tt.name == "unmarshalable" {
				if got == "" {
					t.Errorf("JS() gave nothing")
				}
				return
			}
			if got != tt.want {
				t.Errorf("JS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDwimjs(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want interface{}
	}{
		{
			name: "valid JSON string",
			arg:  `{"input":"ab","accepted":true}`,
			want: map[string]interface{}{"input": "ab", "accepted": true},
		},
		{
			name: "valid JSON bytes",
			arg:  []byte(`["a","b"]`),
			want: []interface{}{"a", "b"},
		},
		{
			name: "non-string, non-byte-slice type",
			arg:  12345,
			want: 12345,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dwimjs(tt.arg); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dwimjs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunes(t *testing.T) {
	if got, want := Runes("aεb"), []string{"a", "ε", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Runes() = %v, want %v", got, want)
	}
	if got := Runes(""); len(got) != 0 {
		t.Errorf("Runes(\"\") = %v", got)
	}
}

func TestCheckErr(t *testing.T) {
	if CheckErr(t, nil, nil) {
		t.Error("no error was expected")
	}
	if !CheckErr(t, errors.New("invalid symbols: x"), errors.New("invalid symbols")) {
		t.Error("an error was expected")
	}
}
