package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// ShaderLoader reads a GLSL stage source as text.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("shader source %s is empty", path)
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeShader,
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     string(data),
	}, nil
}

func (sl *ShaderLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	r.DataSize = 0
	return nil
}
