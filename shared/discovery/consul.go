// Package discovery registers services with a Consul agent.
package discovery

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Registration describes a service instance to announce to Consul.
type Registration struct {
	ID       string
	Name     string
	HTTPAddr string
	// GRPCHealthAddr is probed with the standard gRPC health protocol.
	GRPCHealthAddr string
	Tags           []string
}

// ConsulRegistry registers and deregisters service instances on the local agent.
type ConsulRegistry struct {
	client *api.Client
	logger *zerolog.Logger
}

// NewConsulRegistry connects to the Consul agent at address.
func NewConsulRegistry(address string, logger *zerolog.Logger) (*ConsulRegistry, error) {
	cfg := api.DefaultConfig()
	cfg.Address = address

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	return &ConsulRegistry{client: client, logger: logger}, nil
}

// Register announces the instance and its health check.
func (r *ConsulRegistry) Register(reg Registration) error {
	service, err := agentServiceRegistration(reg)
	if err != nil {
		return err
	}

	if err := r.client.Agent().ServiceRegister(service); err != nil {
		return fmt.Errorf("register %s with consul: %w", reg.ID, err)
	}

	r.logger.Info().Str("service_id", reg.ID).Str("service", reg.Name).Msg("registered with consul")
	return nil
}

// Deregister removes the instance from the agent.
func (r *ConsulRegistry) Deregister(id string) error {
	if err := r.client.Agent().ServiceDeregister(id); err != nil {
		return fmt.Errorf("deregister %s from consul: %w", id, err)
	}

	r.logger.Info().Str("service_id", id).Msg("deregistered from consul")
	return nil
}

func agentServiceRegistration(reg Registration) (*api.AgentServiceRegistration, error) {
	host, portStr, err := net.SplitHostPort(reg.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid service address %q: %w", reg.HTTPAddr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid service port %q: %w", portStr, err)
	}

	service := &api.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: host,
		Port:    port,
		Tags:    reg.Tags,
	}

	if reg.GRPCHealthAddr != "" {
		service.Check = &api.AgentServiceCheck{
			GRPC:                           reg.GRPCHealthAddr,
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		}
	}

	return service, nil
}
