package metrics

import (
	"fmt"

	"github.com/kilianp07/greenshop/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks          []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	PrometheusPort int                    `json:"prometheus_port" yaml:"prometheus_port"`
}

// Validate rejects sinks without a type and out-of-range ports. Port 0
// disables the Prometheus HTTP server.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics.sinks[%d]: missing type", i)
		}
	}
	if c.PrometheusPort < 0 || c.PrometheusPort > 65535 {
		return fmt.Errorf("metrics.prometheus_port out of range: %d", c.PrometheusPort)
	}
	return nil
}
