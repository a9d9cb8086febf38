package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentServiceRegistration(t *testing.T) {
	reg := Registration{
		ID:             "auth-service-1",
		Name:           "auth-service",
		HTTPAddr:       "10.0.0.5:8080",
		GRPCHealthAddr: "10.0.0.5:9090",
		Tags:           []string{"http"},
	}

	service, err := agentServiceRegistration(reg)
	require.NoError(t, err)

	assert.Equal(t, "auth-service-1", service.ID)
	assert.Equal(t, "auth-service", service.Name)
	assert.Equal(t, "10.0.0.5", service.Address)
	assert.Equal(t, 8080, service.Port)
	require.NotNil(t, service.Check)
	assert.Equal(t, "10.0.0.5:9090", service.Check.GRPC)
}

func TestAgentServiceRegistration_NoHealthCheck(t *testing.T) {
	service, err := agentServiceRegistration(Registration{ID: "a", Name: "a", HTTPAddr: ":8080"})
	require.NoError(t, err)

	assert.Equal(t, "", service.Address)
	assert.Equal(t, 8080, service.Port)
	assert.Nil(t, service.Check)
}

func TestAgentServiceRegistration_InvalidAddr(t *testing.T) {
	_, err := agentServiceRegistration(Registration{ID: "a", Name: "a", HTTPAddr: "no-port"})
	assert.Error(t, err)

	_, err = agentServiceRegistration(Registration{ID: "a", Name: "a", HTTPAddr: "host:http"})
	assert.Error(t, err)
}
