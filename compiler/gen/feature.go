package gen

import (
	"os"
	"path/filepath"
)

var (
	// FeatureStdJSON adds MarshalJSON and UnmarshalJSON to codec types, so
	// that they work with encoding/json and gin's JSON rendering.
	FeatureStdJSON = Feature{
		Name:        "json/std",
		Stage:       Stable,
		Default:     true,
		Description: "Codec types implement json.Marshaler and json.Unmarshaler on top of the generated codec",
	}

	// FeatureServiceAPI generates the <Name>API companion interface of services
	// and registers services under it.
	FeatureServiceAPI = Feature{
		Name:        "service/api",
		Stage:       Stable,
		Default:     true,
		Description: "Services get a companion interface listing their exported methods",
	}

	// FeatureRegister generates one csr_register.go per package with a
	// RegisterAll function calling every generated Register function.
	FeatureRegister = Feature{
		Name:        "register",
		Stage:       Stable,
		Default:     true,
		Description: "Generates the RegisterAll aggregator of every package",
		cleanup: func(dir string) error {
			return remove(dir, registerFile)
		},
	}

	// FeatureCache keeps a manifest of the generated files of each package,
	// so unchanged output is not rewritten and stale output is removed.
	FeatureCache = Feature{
		Name:        "cache",
		Stage:       Beta,
		Default:     false,
		Description: "Keeps a .csrgen.cache manifest per package to skip unchanged files",
		cleanup: func(dir string) error {
			return remove(dir, cacheFile)
		},
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureStdJSON,
		FeatureServiceAPI,
		FeatureRegister,
		FeatureCache,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development.
	Experimental

	// Alpha features are usable, but their output may still change.
	Alpha

	// Beta features have a stable output and are documented.
	Beta

	// Stable features are enabled in most projects.
	Stable
)

var stageNames = [...]string{"", "experimental", "alpha", "beta", "stable"}

func (s FeatureStage) String() string {
	if s > 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// A Feature of the csr codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup removes the output of a disabled feature from a package directory.
	cleanup func(dir string) error
}

// FeatureByName returns the feature with the given name.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// remove file (if exists).
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
