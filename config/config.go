// Package config loads direct endpoint declarations from YAML files and
// turns them into endpoint configurations bound to a queue registry.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/glimte/testbus-go/messaging"
	"gopkg.in/yaml.v3"
)

// File is the root of an endpoint configuration file.
type File struct {
	Endpoints []EndpointSpec `yaml:"endpoints"`
}

// EndpointSpec declares one direct endpoint.
type EndpointSpec struct {
	// Name identifies the endpoint.
	Name string `yaml:"name"`

	// Queue is the destination queue name.
	Queue string `yaml:"queue"`

	// TimeoutMillis bounds synchronous reply waits. Defaults to 5000.
	TimeoutMillis int64 `yaml:"timeoutMillis"`

	// PollingIntervalMillis is the correlation poll interval. Defaults to 500.
	PollingIntervalMillis int64 `yaml:"pollingIntervalMillis"`

	// Sync selects a synchronous (request/reply) endpoint.
	Sync bool `yaml:"sync"`
}

// Load reads and parses an endpoint configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read endpoint configuration: %w", err)
	}
	return Parse(data)
}

// Parse parses endpoint configuration YAML.
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse endpoint configuration: %w", err)
	}

	seen := make(map[string]bool)
	for i, spec := range file.Endpoints {
		if spec.Name == "" {
			return nil, fmt.Errorf("endpoint %d has no name", i)
		}
		if spec.Queue == "" {
			return nil, fmt.Errorf("endpoint '%s' has no queue", spec.Name)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("duplicate endpoint name '%s'", spec.Name)
		}
		seen[spec.Name] = true
	}
	return &file, nil
}

// EndpointConfig builds the messaging configuration of one spec, resolving
// the queue through (and creating it in) the given registry.
func (s EndpointSpec) EndpointConfig(registry *messaging.QueueRegistry, options ...messaging.EndpointOption) (*messaging.DirectEndpointConfig, error) {
	queue, err := registry.GetOrCreate(s.Queue)
	if err != nil {
		return nil, err
	}

	timeout := messaging.DefaultTimeout
	if s.TimeoutMillis > 0 {
		timeout = time.Duration(s.TimeoutMillis) * time.Millisecond
	}
	interval := messaging.DefaultPollingInterval
	if s.PollingIntervalMillis > 0 {
		interval = time.Duration(s.PollingIntervalMillis) * time.Millisecond
	}

	opts := append([]messaging.EndpointOption{
		messaging.WithQueue(queue),
		messaging.WithResolver(registry),
		messaging.WithTimeout(timeout),
		messaging.WithPollingInterval(interval),
	}, options...)
	return messaging.NewDirectEndpointConfig(opts...), nil
}

// Build constructs every declared endpoint against the registry. Sync specs
// become DirectSyncEndpoints, the rest DirectEndpoints.
func (f *File) Build(registry *messaging.QueueRegistry, options ...messaging.EndpointOption) (map[string]*messaging.DirectEndpoint, map[string]*messaging.DirectSyncEndpoint, error) {
	endpoints := make(map[string]*messaging.DirectEndpoint)
	syncEndpoints := make(map[string]*messaging.DirectSyncEndpoint)

	for _, spec := range f.Endpoints {
		cfg, err := spec.EndpointConfig(registry, options...)
		if err != nil {
			return nil, nil, fmt.Errorf("endpoint '%s': %w", spec.Name, err)
		}
		if spec.Sync {
			syncEndpoints[spec.Name] = messaging.NewDirectSyncEndpoint(spec.Name, cfg)
		} else {
			endpoints[spec.Name] = messaging.NewDirectEndpoint(spec.Name, cfg)
		}
	}
	return endpoints, syncEndpoints, nil
}
