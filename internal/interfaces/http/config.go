package http_interface

import (
	"fmt"

	"github.com/Librechain/bmultisig/internal/core/application"
)

const (
	minPort = 1024
	maxPort = 49151
)

type ServiceConfig struct {
	Port          int
	WalletService *application.WalletService
}

func (c ServiceConfig) validate() error {
	if c.Port < minPort || c.Port > maxPort {
		return fmt.Errorf("port must be in range [%d, %d]", minPort, maxPort)
	}
	if c.WalletService == nil {
		return fmt.Errorf("missing wallet service")
	}
	return nil
}

func (c ServiceConfig) address() string {
	return fmt.Sprintf(":%d", c.Port)
}
