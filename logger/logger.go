package logger

import "go.uber.org/zap"

// New builds the service logger. Development gets the human-readable
// console encoder; anything else gets production JSON.
func New(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
