package main

import (
	"fmt"

	twitter "github.com/anatolykoptev/go-twitter-threads"
	"go.uber.org/dig"
)

// BuildContainer wires configuration, logging and the client.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		ProvideConfig,
		ProvideLogger,
		twitter.NewClient,
	}
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return nil, fmt.Errorf("failed to provide %T: %w", p, err)
		}
	}
	return container, nil
}
