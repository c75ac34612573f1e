package webhook

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		id      string
		token   string
		wantErr bool
	}{
		{"discord", "https://discord.com/api/webhooks/123/abc-DEF", "123", "abc-DEF", false},
		{"versioned", "https://discord.com/api/v10/webhooks/9/tok", "9", "tok", false},
		{"trailing slash", "https://discordapp.com/api/webhooks/1/t/", "1", "t", false},
		{"missing token", "https://discord.com/api/webhooks/123", "", "", true},
		{"not a url", "::::", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Parse(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error", tt.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.url, err)
			}
			if h.ID != tt.id || h.Token != tt.token {
				t.Errorf("Parse(%q) = %s/%s, want %s/%s", tt.url, h.ID, h.Token, tt.id, tt.token)
			}
		})
	}
}

func TestMustParseOrNil(t *testing.T) {
	if MustParseOrNil("") != nil {
		t.Error("empty url should yield nil")
	}
	if MustParseOrNil("https://example.com/nothing") != nil {
		t.Error("invalid url should yield nil")
	}

	var h *Hook
	if err := h.Send(); err != nil {
		t.Errorf("Send on nil hook = %v, want nil", err)
	}
}

func TestEmbed(t *testing.T) {
	e := Embed("[ERROR] DB", "boom", 0xFF0000)
	if e.Title != "[ERROR] DB" || e.Color != 0xFF0000 {
		t.Errorf("Embed() = %+v", e)
	}
	if e.Footer == nil || e.Footer.Text == "" {
		t.Error("Embed() should carry the footer")
	}
}
