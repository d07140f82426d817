package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/zeroechelon/outpost/internal/config"
	"github.com/zeroechelon/outpost/internal/domain/events"
	"github.com/zeroechelon/outpost/internal/dynamodb"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/logger"
)

// processedEventRepository is the durable idempotency set, one item per
// event identity.
type processedEventRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *logger.Logger
}

func NewProcessedEventRepository(client *dynamodb.Client, cfg *config.Configuration, logger *logger.Logger) events.Repository {
	return &processedEventRepository{
		client:    client,
		tableName: cfg.DynamoDB.EventsTable,
		logger:    logger,
	}
}

func (r *processedEventRepository) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	out, err := r.client.DB().GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]ddbtypes.AttributeValue{
			"event_id": &ddbtypes.AttributeValueMemberS{Value: eventID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to check event marker").
			Mark(ierr.ErrDatabase)
	}
	return out.Item != nil, nil
}

// MarkProcessed inserts the marker with a create-if-absent condition. The
// losing side of a concurrent race gets inserted=false, not an error.
func (r *processedEventRepository) MarkProcessed(ctx context.Context, marker *events.ProcessedMarker) (bool, error) {
	item, err := attributevalue.MarshalMap(marker)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to encode event marker").
			Mark(ierr.ErrSystem)
	}

	_, err = r.client.DB().PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(event_id)"),
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if ierr.As(err, &ccf) {
			return false, nil
		}
		return false, ierr.WithError(err).
			WithHint("Failed to write event marker").
			Mark(ierr.ErrDatabase)
	}
	return true, nil
}
