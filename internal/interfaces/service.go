package interfaces

import (
	"fmt"

	http_interface "github.com/Librechain/bmultisig/internal/interfaces/http"
)

// Service interface defines the methods that every kind of interface, whether
// gRPC, REST, or whatever must be compliant with.
type Service interface {
	Start() error
	Stop()
}

type ServiceManager struct {
	Service
}

func NewHTTPServiceManager(
	config http_interface.ServiceConfig,
) (*ServiceManager, error) {
	svc, err := http_interface.NewService(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize http service: %s", err)
	}
	return &ServiceManager{svc}, nil
}
