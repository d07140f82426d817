package dynamodb

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/zeroechelon/outpost/internal/config"
	"github.com/zeroechelon/outpost/internal/domain/usage"
	"github.com/zeroechelon/outpost/internal/dynamodb"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/logger"
)

// usageRepository stores one item per tenant per calendar month. The table
// is keyed by tenant_id (hash) and period_key (range) so history is a
// prefix query and every counter mutation is a single conditional update.
type usageRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *logger.Logger
}

func NewUsageRepository(client *dynamodb.Client, cfg *config.Configuration, logger *logger.Logger) usage.Repository {
	return &usageRepository{
		client:    client,
		tableName: cfg.DynamoDB.UsageTable,
		logger:    logger,
	}
}

func (r *usageRepository) key(periodKey string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"tenant_id":  &ddbtypes.AttributeValueMemberS{Value: tenantFromKey(periodKey)},
		"period_key": &ddbtypes.AttributeValueMemberS{Value: periodKey},
	}
}

// IncrementWithCeiling performs the bounded atomic increment. The condition
// admits the write only while the stored count is below the ceiling, so
// concurrent callers at the boundary cannot overshoot and no compensating
// decrement is ever required on this path.
func (r *usageRepository) IncrementWithCeiling(ctx context.Context, periodKey string, tenantID string, ceiling int64) (int64, error) {
	now := time.Now().UTC()

	out, err := r.client.DB().UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 r.key(periodKey),
		UpdateExpression:    aws.String("SET updated_at = :ts ADD job_count :inc"),
		ConditionExpression: aws.String("attribute_not_exists(job_count) OR job_count < :ceiling"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":inc":     &ddbtypes.AttributeValueMemberN{Value: "1"},
			":ceiling": &ddbtypes.AttributeValueMemberN{Value: formatInt(ceiling)},
			":ts":      &ddbtypes.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ReturnValues:                        ddbtypes.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: ddbtypes.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if ierr.As(err, &ccf) {
			observed := ceiling
			if ccf.Item != nil {
				if n, parseErr := parseCount(ccf.Item); parseErr == nil {
					observed = n
				}
			}
			return 0, ierr.NewError("usage ceiling reached").
				WithHintf("Quota exceeded. Limit: %d, Used: %d", ceiling, observed).
				WithReportableDetails(map[string]any{
					"ceiling": ceiling,
					"count":   observed,
				}).
				Mark(ierr.ErrQuotaExceeded)
		}
		return 0, ierr.WithError(err).
			WithHint("Failed to record usage").
			Mark(ierr.ErrDatabase)
	}

	count, err := parseCount(out.Attributes)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DecrementIfPositive is the best-effort compensation path. A failed
// precondition means the counter is already at zero and is not an error.
func (r *usageRepository) DecrementIfPositive(ctx context.Context, periodKey string) error {
	_, err := r.client.DB().UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 r.key(periodKey),
		UpdateExpression:    aws.String("SET job_count = job_count - :dec, updated_at = :ts"),
		ConditionExpression: aws.String("job_count > :zero"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":dec":  &ddbtypes.AttributeValueMemberN{Value: "1"},
			":zero": &ddbtypes.AttributeValueMemberN{Value: "0"},
			":ts":   &ddbtypes.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if ierr.As(err, &ccf) {
			return nil
		}
		return ierr.WithError(err).
			WithHint("Failed to release usage").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *usageRepository) Get(ctx context.Context, periodKey string) (*usage.Period, error) {
	out, err := r.client.DB().GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            r.key(periodKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read usage").
			Mark(ierr.ErrDatabase)
	}
	if out.Item == nil {
		return nil, ierr.NewError("usage period not found").
			WithReportableDetails(map[string]any{"period_key": periodKey}).
			Mark(ierr.ErrNotFound)
	}

	var period usage.Period
	if err := attributevalue.UnmarshalMap(out.Item, &period); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode usage record").
			Mark(ierr.ErrSystem)
	}
	period.PeriodKey = periodKey
	return &period, nil
}

func (r *usageRepository) Reset(ctx context.Context, periodKey string, tenantID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.client.DB().UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              r.key(periodKey),
		UpdateExpression: aws.String("SET job_count = :zero, reset_at = :ts, updated_at = :ts"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":zero": &ddbtypes.AttributeValueMemberN{Value: "0"},
			":ts":   &ddbtypes.AttributeValueMemberS{Value: now},
		},
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to reset usage").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *usageRepository) History(ctx context.Context, tenantID string, limit int) ([]*usage.Period, error) {
	out, err := r.client.DB().Query(ctx, &awsdynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("tenant_id = :tid AND begins_with(period_key, :prefix)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":tid":    &ddbtypes.AttributeValueMemberS{Value: tenantID},
			":prefix": &ddbtypes.AttributeValueMemberS{Value: tenantID + "#"},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query usage history").
			Mark(ierr.ErrDatabase)
	}

	periods := make([]*usage.Period, 0, len(out.Items))
	for _, item := range out.Items {
		var period usage.Period
		if err := attributevalue.UnmarshalMap(item, &period); err != nil {
			r.logger.Errorw("skipping undecodable usage record", "tenant_id", tenantID, "error", err)
			continue
		}
		periods = append(periods, &period)
	}
	return periods, nil
}

func parseCount(item map[string]ddbtypes.AttributeValue) (int64, error) {
	attr, ok := item["job_count"]
	if !ok {
		return 0, nil
	}
	var count int64
	if err := attributevalue.Unmarshal(attr, &count); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to decode usage counter").
			Mark(ierr.ErrSystem)
	}
	return count, nil
}

func tenantFromKey(periodKey string) string {
	if idx := strings.Index(periodKey, "#"); idx >= 0 {
		return periodKey[:idx]
	}
	return periodKey
}
