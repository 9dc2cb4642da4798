package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		raw     string
		given   string
		surname string
		display string
	}{
		{"Ian /A'Court/", "Ian", "A'Court", "Ian A'Court"},
		{"  Mary Ann   /Smith/ Jr.", "Mary Ann", "Smith", "Mary Ann Smith"},
		{"/Nobody/", "", "Nobody", "Nobody"},
		{"Given //", "Given", "", "Given"},
		{"No Slashes", "", "", ""},
		{"", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			given, surname := SplitName(tt.raw)
			assert.Equal(t, tt.given, given)
			assert.Equal(t, tt.surname, surname)
			assert.Equal(t, tt.display, DisplayName(given, surname))
		})
	}
}

func TestNormalizeMediaPath(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"windows media", `C:\Brother's Keeper 7\Data\Media\photo1.jpg`, "Data/Media/photo1.jpg"},
		{"windows picture", `D:\bk\Data\Picture\1901\court.png`, "Data/Picture/1901/court.png"},
		{"mixed separators", `C:/bk\data\media/x.jpg`, "data/media/x.jpg"},
		{"first root wins", `C:\Data\Media\old\Data\Media\x.jpg`, "Data/Media/old/Data/Media/x.jpg"},
		{"already portable", "Data/Media/photo1.jpg", "Data/Media/photo1.jpg"},
		{"no root", `photos\scan.jpg`, "photos/scan.jpg"},
		{"bare filename", "scan.jpg", "scan.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeMediaPath(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeMediaPath(got), "normalization must be idempotent")
		})
	}
}
