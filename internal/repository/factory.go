package repository

import (
	"github.com/zeroechelon/outpost/internal/cache"
	"github.com/zeroechelon/outpost/internal/config"
	"github.com/zeroechelon/outpost/internal/domain/events"
	"github.com/zeroechelon/outpost/internal/domain/tenant"
	"github.com/zeroechelon/outpost/internal/domain/usage"
	"github.com/zeroechelon/outpost/internal/dynamodb"
	"github.com/zeroechelon/outpost/internal/logger"
	dynamoRepo "github.com/zeroechelon/outpost/internal/repository/dynamodb"
)

func NewTenantRepository(client *dynamodb.Client, cfg *config.Configuration, c cache.Cache, logger *logger.Logger) tenant.Repository {
	return dynamoRepo.NewTenantRepository(client, cfg, c, logger)
}

func NewUsageRepository(client *dynamodb.Client, cfg *config.Configuration, logger *logger.Logger) usage.Repository {
	return dynamoRepo.NewUsageRepository(client, cfg, logger)
}

func NewProcessedEventRepository(client *dynamodb.Client, cfg *config.Configuration, logger *logger.Logger) events.Repository {
	return dynamoRepo.NewProcessedEventRepository(client, cfg, logger)
}
