// Package infra holds the adapters around the scheduling core: instance
// files, zerolog, Prometheus and InfluxDB sinks, and the MQTT publisher.
// They depend on interfaces from core and never the other way round.
package infra
