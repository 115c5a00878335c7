package schema

import "testing"

func TestValidateMeshConfig(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{
			name: "valid scene",
			text: `{
				"sphere1": {"name": "sphere1", "type": "sphere", "color": "Red", "position": [0, 1, 0], "rotation": [0, 0, 0]},
				"box1": {"name": "box1", "type": "box", "scaling": [1, 1.5, 1], "animation": true}
			}`,
		},
		{name: "empty object", text: `{}`},
		{name: "lowercase client color", text: `{"ground": {"type": "plane", "color": "brown"}}`},
		{name: "not json", text: `Sure! Here is the config: {}`, wantErr: true},
		{name: "array top level", text: `[{"type": "sphere"}]`, wantErr: true},
		{name: "entry not object", text: `{"sphere1": "red"}`, wantErr: true},
		{name: "two element position", text: `{"s": {"type": "sphere", "position": [0, 1]}}`, wantErr: true},
		{name: "string in rotation", text: `{"s": {"type": "sphere", "rotation": [0, "90", 0]}}`, wantErr: true},
		{name: "numeric color", text: `{"s": {"type": "sphere", "color": 3}}`, wantErr: true},
		{name: "trailing prose", text: `{"s": {}} hope this helps`, wantErr: true},
		{name: "extra closing brace", text: `{"s":{"type":"sphere"}}}`, wantErr: true},
		{name: "extra closing brackets", text: `{"s":{"type":"sphere"}}]]`, wantErr: true},
		{name: "second document", text: `{"s":{}} {"t":{}}`, wantErr: true},
		{name: "trailing whitespace", text: "{\"s\":{}}\n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMeshConfig(tt.text)
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
