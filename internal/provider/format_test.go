package provider

import (
	"testing"

	"mangadventure/internal/media"
)

func TestFormatTile(t *testing.T) {
	tests := []struct {
		name string
		tile media.Tile
		want string
	}{
		{"plain", media.Tile{Title: "Creepy Cat"}, "Creepy Cat"},
		{"licensed", media.Tile{Title: "Creepy Cat", Subtitle: "[LICENSED]"}, "Creepy Cat [LICENSED]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTile(tt.tile); got != tt.want {
				t.Errorf("FormatTile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatChapter(t *testing.T) {
	tests := []struct {
		name    string
		chapter media.Chapter
		want    string
	}{
		{"full title", media.Chapter{Name: "Vol. 1, Ch. 3: Rain", Number: 3, Volume: 1}, "Vol. 1, Ch. 3: Rain"},
		{"with group", media.Chapter{Name: "Ch. 3", Group: "A, B"}, "Ch. 3 [A, B]"},
		{"numbers only", media.Chapter{Number: 12.5, Volume: 2}, "Vol. 2 Ch. 12.5"},
		{"no volume", media.Chapter{Number: 4}, "Ch. 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatChapter(tt.chapter); got != tt.want {
				t.Errorf("FormatChapter() = %q, want %q", got, tt.want)
			}
		})
	}
}
