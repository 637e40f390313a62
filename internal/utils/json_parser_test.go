package utils

import (
	"testing"
)

func TestParseAnalyzerJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"style": "modern", "bedrooms": 3}`,
			want: map[string]interface{}{
				"style":    "modern",
				"bedrooms": float64(3),
			},
			wantErr: false,
		},
		{
			name: "JSON in markdown code block",
			input: "```json\n" +
				`{"style": "colonial", "bedrooms": 2}` + "\n```",
			want: map[string]interface{}{
				"style":    "colonial",
				"bedrooms": float64(2),
			},
			wantErr: false,
		},
		{
			name: "JSON in bare code block",
			input: "```\n" +
				`{"total": 85}` + "\n```",
			want: map[string]interface{}{
				"total": float64(85),
			},
			wantErr: false,
		},
		{
			name:  "JSON with surrounding text",
			input: `Analysis complete: {"status": "ok", "count": 5} end of report.`,
			want: map[string]interface{}{
				"status": "ok",
				"count":  float64(5),
			},
			wantErr: false,
		},
		{
			name:  "Nested braces inside strings",
			input: `result {"note": "braces {inside} string", "v": 1} trailing`,
			want: map[string]interface{}{
				"note": "braces {inside} string",
				"v":    float64(1),
			},
			wantErr: false,
		},
		{
			name:    "Empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "No JSON at all",
			input:   "nothing useful here",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			err := ParseAnalyzerJSON(tt.input, &got)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAnalyzerJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			for k, want := range tt.want {
				if got[k] != want {
					t.Errorf("key %q = %v, want %v", k, got[k], want)
				}
			}
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple object", `{"a":1} tail`, `{"a":1}`},
		{"nested object", `{"a":{"b":2}} tail`, `{"a":{"b":2}}`},
		{"unterminated", `{"a":1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractBalanced(tt.input, '{', '}')
			if got != tt.want {
				t.Errorf("extractBalanced() = %q, want %q", got, tt.want)
			}
		})
	}
}
