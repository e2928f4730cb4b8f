package assets

import "github.com/spaghettifunk/lumen/engine/renderer/metadata"

type Loader interface {
	Load(path string, params interface{}) (*metadata.Resource, error) // `interface{}` here allows loaders to take per-type parameters
	Unload(*metadata.Resource) error
}
