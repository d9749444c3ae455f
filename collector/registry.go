package collector

import (
	"fmt"
	"sync"
)

var (
	registry = make(map[string]Collector)
	mu       sync.RWMutex
)

// Register registers a collector for its service name.
func Register(c Collector) {
	mu.Lock()
	defer mu.Unlock()
	registry[c.Service()] = c
}

// Get retrieves the collector for a service name.
func Get(service string) (Collector, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[service]
	if !ok {
		return nil, fmt.Errorf("collector not found for service: %s", service)
	}
	return c, nil
}

// Services returns all registered service names.
func Services() []string {
	mu.RLock()
	defer mu.RUnlock()
	services := make([]string, 0, len(registry))
	for s := range registry {
		services = append(services, s)
	}
	return services
}
