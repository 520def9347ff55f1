// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Config: {
	name:     string & !=""
	workers?: int & >=1
}
`

type testConfig struct {
	Name    string `json:"name"`
	Workers int    `json:"workers"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		opts    []Option
		want    testConfig
		wantErr string
	}{
		{
			name: "valid",
			data: "name: \"gfx\"\nworkers: 4\n",
			want: testConfig{Name: "gfx", Workers: 4},
		},
		{
			name:    "schema violation names the field",
			data:    "name: \"gfx\"\nworkers: 0\n",
			opts:    []Option{WithFilename("nswrap.cue")},
			wantErr: "workers",
		},
		{
			name:    "closed definition rejects unknown fields",
			data:    "name: \"gfx\"\nbogus: true\n",
			wantErr: "bogus",
		},
		{
			name:    "syntax error",
			data:    "name: \n",
			wantErr: "<input>",
		},
		{
			name:    "file too large",
			data:    "name: \"gfx\"\n",
			opts:    []Option{WithMaxFileSize(4)},
			wantErr: "exceeds maximum",
		},
		{
			name:    "missing required field with concrete",
			data:    "workers: 2\n",
			opts:    []Option{WithConcrete(true)},
			wantErr: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := ParseAndDecode[testConfig]([]byte(testSchema), []byte(tt.data), "#Config", tt.opts...)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *res.Value != tt.want {
				t.Errorf("Value = %+v, want %+v", *res.Value, tt.want)
			}
		})
	}
}
