// Package gen loads route manifests and writes the translated Swagger
// document to disk in the requested formats.
package gen

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-openapi/spec"
	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/yaml"

	"github.com/griffnb/route-swag/internal/builder"
	"github.com/griffnb/route-swag/internal/diag"
	"github.com/griffnb/route-swag/internal/domain"
)

// Manifest is the on-disk input: translation settings plus the route set.
// It may be written as JSON or YAML.
type Manifest struct {
	Settings builder.Settings         `json:"settings"`
	Routes   []domain.RouteDescriptor `json:"routes"`
}

// LoadManifest reads and decodes a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	if len(m.Routes) == 0 {
		return nil, fmt.Errorf("manifest %s declares no routes", path)
	}
	return &m, nil
}

// Config presents Gen configurations.
type Config struct {
	// InputFile is the route manifest to translate.
	InputFile string

	// OutputDir receives the generated files.
	OutputDir string

	// OutputTypes selects the generated formats ("json", "yaml").
	OutputTypes []string

	// Overrides are applied on top of the manifest's settings before
	// translation. Nil fields leave the manifest value in place.
	BasePath        *string
	PayloadType     *string
	AcceptToProduce *bool
	PathPrefixSize  *int

	// Quiet suppresses diagnostic output.
	Quiet bool

	// Debug receives progress and diagnostics. Defaults to stderr.
	Debug diag.Debugger
}

type genTypeWriter func(*Gen, string, *spec.Swagger) error

// Gen generates Swagger document files from a route manifest.
type Gen struct {
	jsonIndent    func(data interface{}) ([]byte, error)
	jsonToYAML    func(data []byte) ([]byte, error)
	outputTypeMap map[string]genTypeWriter
	debug         diag.Debugger
}

// New creates a new Gen.
func New() *Gen {
	g := &Gen{
		jsonIndent: func(data interface{}) ([]byte, error) {
			return json.MarshalIndent(data, "", "    ")
		},
		jsonToYAML: yaml.JSONToYAML,
		debug:      log.New(os.Stderr, "", log.LstdFlags),
	}
	g.outputTypeMap = map[string]genTypeWriter{
		"json": (*Gen).writeJSONSwagger,
		"yaml": (*Gen).writeYAMLSwagger,
		"yml":  (*Gen).writeYAMLSwagger,
	}
	return g
}

// Build translates the manifest and writes every requested output format.
func (g *Gen) Build(config *Config) error {
	if config.Debug != nil {
		g.debug = config.Debug
	}

	manifest, err := LoadManifest(config.InputFile)
	if err != nil {
		return err
	}

	settings := manifest.Settings
	if config.BasePath != nil {
		settings.BasePath = *config.BasePath
	}
	if config.PayloadType != nil {
		settings.PayloadType = *config.PayloadType
	}
	if config.AcceptToProduce != nil {
		settings.AcceptToProduce = *config.AcceptToProduce
	}
	if config.PathPrefixSize != nil {
		settings.PathPrefixSize = *config.PathPrefixSize
	}

	result, err := builder.New(&settings).Translate(manifest.Routes)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	if !config.Quiet {
		for _, d := range result.Diagnostics {
			g.debug.Printf("%s", d)
		}
	}

	if err := os.MkdirAll(config.OutputDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", config.OutputDir, err)
	}

	outputTypes := config.OutputTypes
	if len(outputTypes) == 0 {
		outputTypes = []string{"json", "yaml"}
	}

	// Formats are independent; write them concurrently.
	var eg errgroup.Group
	for _, outputType := range outputTypes {
		writer, ok := g.outputTypeMap[outputType]
		if !ok {
			return fmt.Errorf("output type %q not supported", outputType)
		}
		eg.Go(func() error {
			return writer(g, config.OutputDir, result.Swagger)
		})
	}
	return eg.Wait()
}

func (g *Gen) writeJSONSwagger(outputDir string, swagger *spec.Swagger) error {
	data, err := g.jsonIndent(swagger)
	if err != nil {
		return err
	}
	path := filepath.Join(outputDir, "swagger.json")
	if err := g.writeFile(data, path); err != nil {
		return err
	}
	g.debug.Printf("create swagger.json at %s", path)
	return nil
}

func (g *Gen) writeYAMLSwagger(outputDir string, swagger *spec.Swagger) error {
	jsonData, err := json.Marshal(swagger)
	if err != nil {
		return err
	}
	yamlData, err := g.jsonToYAML(jsonData)
	if err != nil {
		return fmt.Errorf("cannot convert json to yaml: %w", err)
	}
	path := filepath.Join(outputDir, "swagger.yaml")
	if err := g.writeFile(yamlData, path); err != nil {
		return err
	}
	g.debug.Printf("create swagger.yaml at %s", path)
	return nil
}

func (g *Gen) writeFile(data []byte, path string) error {
	return os.WriteFile(path, data, 0o644)
}
