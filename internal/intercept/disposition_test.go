package intercept

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{
			name:   "quoted filename",
			header: `attachment; filename="report.csv"`,
			want:   "report.csv",
			ok:     true,
		},
		{
			name:   "utf8 extended filename",
			header: `attachment; filename*=UTF-8''r%C3%A9sum%C3%A9.csv`,
			want:   "résumé.csv",
			ok:     true,
		},
		{
			name:   "extended form preferred over plain",
			header: `attachment; filename="fallback.pdf"; filename*=UTF-8''r%C3%A9al.pdf`,
			want:   "réal.pdf",
			ok:     true,
		},
		{
			name:   "bare filename token",
			header: `attachment; filename=inv200.pdf`,
			want:   "inv200.pdf",
			ok:     true,
		},
		{
			name:   "no filename parameter",
			header: `attachment`,
			ok:     false,
		},
		{
			name:   "empty header",
			header: "",
			ok:     false,
		},
		{
			name:   "inline disposition still yields name",
			header: `inline; filename="preview.pdf"`,
			want:   "preview.pdf",
			ok:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Filename(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsAttachment(t *testing.T) {
	assert.True(t, IsAttachment(`attachment; filename="a.pdf"`))
	assert.True(t, IsAttachment(`ATTACHMENT`))
	assert.False(t, IsAttachment(`inline; filename="a.pdf"`))
	assert.False(t, IsAttachment(""))
}
