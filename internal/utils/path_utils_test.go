package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenes", "shading_ad.go"), OutputPath(filepath.Join("scenes", "shading.adj")))
	assert.Equal(t, "brdf_ad.go", OutputPath("brdf.ad"))
	assert.Equal(t, "notes.txt_ad.go", OutputPath("notes.txt"))
}

func TestPackageName(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"/src/shading", "shading"},
		{"/src/Render-Kit", "renderkit"},
		{"/src/2d", "main"},
		{"/src/func", "main"},
		{"/src/my_pkg", "my_pkg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PackageName(tt.dir), tt.dir)
	}
}
