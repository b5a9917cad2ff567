package logging

import "testing"

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level   string
		format  string
		wantErr bool
	}{
		{level: "info", format: "json"},
		{level: "DEBUG", format: "console"},
		{level: "", format: "json"},
		{level: "loud", format: "json", wantErr: true},
	}

	for _, tt := range tests {
		logger, err := New(tt.level, tt.format)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("level %q: expected error", tt.level)
			}
			continue
		}
		if err != nil {
			t.Fatalf("level %q: unexpected error: %v", tt.level, err)
		}
		_ = logger.Sync()
	}
}
