// Package compose finds the Dockerfiles behind the services of a
// docker-compose file.
package compose

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	log "github.com/lucas-albers-lz4/uptag/pkg/log"
)

// Service is one compose service that builds a local image.
type Service struct {
	Name           string
	DockerfilePath string
}

// File is a parsed compose file.
type File struct {
	Path     string
	services []Service
}

// Services returns the buildable services in declaration order.
func (f *File) Services() []Service {
	return f.services
}

// buildConfig mirrors a service's build section. The short string form
// names the context directory; the mapping form may override the
// Dockerfile name.
type buildConfig struct {
	Context    string
	Dockerfile string
}

// UnmarshalYAML accepts both build forms:
//
//	build: ./api
//	build: {context: ./api, dockerfile: Dockerfile.prod}
func (b *buildConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&b.Context)
	}

	var m struct {
		Context    string `yaml:"context"`
		Dockerfile string `yaml:"dockerfile"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}
	b.Context = m.Context
	b.Dockerfile = m.Dockerfile
	return nil
}

// Load parses the compose file at path. Service order follows the
// document; services without a build section are skipped, since there is
// no Dockerfile to check behind them.
func Load(fs afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	var doc struct {
		Services yaml.Node `yaml:"services"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if doc.Services.Kind == 0 {
		return nil, errors.Errorf("%s: missing services section", path)
	}
	if doc.Services.Kind != yaml.MappingNode {
		return nil, errors.Errorf("%s: services must be a mapping", path)
	}

	file := &File{Path: path}
	dir := filepath.Dir(path)

	// A mapping node stores its pairs as alternating key and value
	// entries, in document order.
	for i := 0; i+1 < len(doc.Services.Content); i += 2 {
		name := doc.Services.Content[i].Value

		var svc struct {
			Build *buildConfig `yaml:"build"`
		}
		if err := doc.Services.Content[i+1].Decode(&svc); err != nil {
			return nil, errors.Wrapf(err, "failed to parse service %s in %s", name, path)
		}
		if svc.Build == nil {
			log.Debug("service has no build section, skipping", "service", name, "path", path)
			continue
		}

		dockerfile := svc.Build.Dockerfile
		if dockerfile == "" {
			dockerfile = "Dockerfile"
		}
		file.services = append(file.services, Service{
			Name:           name,
			DockerfilePath: filepath.Join(dir, svc.Build.Context, dockerfile),
		})
	}

	log.Debug("loaded compose file", "path", path, "services", len(file.services))
	return file, nil
}
