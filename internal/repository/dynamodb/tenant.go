package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/zeroechelon/outpost/internal/cache"
	"github.com/zeroechelon/outpost/internal/config"
	"github.com/zeroechelon/outpost/internal/domain/tenant"
	"github.com/zeroechelon/outpost/internal/dynamodb"
	ierr "github.com/zeroechelon/outpost/internal/errors"
	"github.com/zeroechelon/outpost/internal/logger"
	"github.com/zeroechelon/outpost/internal/types"
)

type tenantRepository struct {
	client        *dynamodb.Client
	tableName     string
	customerIndex string
	cache         cache.Cache
	logger        *logger.Logger
}

func NewTenantRepository(client *dynamodb.Client, cfg *config.Configuration, c cache.Cache, logger *logger.Logger) tenant.Repository {
	return &tenantRepository{
		client:        client,
		tableName:     cfg.DynamoDB.TenantsTable,
		customerIndex: cfg.DynamoDB.CustomerIndex,
		cache:         c,
		logger:        logger,
	}
}

func (r *tenantRepository) key(id string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		"tenant_id": &ddbtypes.AttributeValueMemberS{Value: id},
	}
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	out, err := r.client.DB().GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            r.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read tenant").
			Mark(ierr.ErrDatabase)
	}
	if out.Item == nil {
		return nil, ierr.NewError("tenant not found").
			WithHintf("Tenant not found: %s", id).
			WithReportableDetails(map[string]any{"tenant_id": id}).
			Mark(ierr.ErrNotFound)
	}

	var t tenant.Tenant
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode tenant record").
			Mark(ierr.ErrSystem)
	}
	return &t, nil
}

// GetByPaymentCustomerID resolves a tenant through the secondary index on
// payment_customer_id. The customer-to-tenant binding is written once and
// never rebound, so it is safe to cache.
func (r *tenantRepository) GetByPaymentCustomerID(ctx context.Context, customerID string) (*tenant.Tenant, error) {
	cacheKey := cache.GenerateKey(cache.PrefixCustomerTenant, customerID)
	if cached, found := r.cache.Get(ctx, cacheKey); found {
		if tenantID, ok := cached.(string); ok {
			return r.GetByID(ctx, tenantID)
		}
	}

	out, err := r.client.DB().Query(ctx, &awsdynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.customerIndex),
		KeyConditionExpression: aws.String("payment_customer_id = :cid"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":cid": &ddbtypes.AttributeValueMemberS{Value: customerID},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to resolve tenant by payment customer").
			Mark(ierr.ErrDatabase)
	}
	if len(out.Items) == 0 {
		return nil, ierr.NewError("no tenant for payment customer").
			WithReportableDetails(map[string]any{"payment_customer_id": customerID}).
			Mark(ierr.ErrNotFound)
	}

	var t tenant.Tenant
	if err := attributevalue.UnmarshalMap(out.Items[0], &t); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode tenant record").
			Mark(ierr.ErrSystem)
	}

	r.cache.Set(ctx, cacheKey, t.ID, cache.DefaultExpiration)
	return &t, nil
}

func (r *tenantRepository) SetPaymentCustomerID(ctx context.Context, id string, customerID string) error {
	_, err := r.client.DB().UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 r.key(id),
		UpdateExpression:    aws.String("SET payment_customer_id = :cid, updated_at = :ts"),
		ConditionExpression: aws.String("attribute_exists(tenant_id)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":cid": &ddbtypes.AttributeValueMemberS{Value: customerID},
			":ts":  &ddbtypes.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if ierr.As(err, &ccf) {
			return ierr.NewError("tenant not found").
				WithHintf("Tenant not found: %s", id).
				Mark(ierr.ErrNotFound)
		}
		return ierr.WithError(err).
			WithHint("Failed to store payment customer id").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// ApplySubscriptionUpdate upserts the subscription fields carried by a
// lifecycle event. The tenant status clause is included only when the
// caller observed a change, which keeps redelivered events from producing
// spurious writes.
func (r *tenantRepository) ApplySubscriptionUpdate(ctx context.Context, id string, update tenant.SubscriptionUpdate) error {
	expr := "SET subscription_status = :ss, subscription_id = :sid, updated_at = :ts"
	values := map[string]ddbtypes.AttributeValue{
		":ss":  &ddbtypes.AttributeValueMemberS{Value: string(update.SubscriptionStatus)},
		":sid": &ddbtypes.AttributeValueMemberS{Value: update.SubscriptionID},
		":ts":  &ddbtypes.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
	}
	var names map[string]string

	if update.PeriodEnd != nil {
		expr += ", subscription_period_end = :pe"
		values[":pe"] = &ddbtypes.AttributeValueMemberS{Value: update.PeriodEnd.UTC().Format(time.RFC3339)}
	}
	if update.Status != "" {
		// "status" is a DynamoDB reserved word.
		expr += ", #st = :status"
		values[":status"] = &ddbtypes.AttributeValueMemberS{Value: string(update.Status)}
		names = map[string]string{"#st": "status"}
	}

	_, err := r.client.DB().UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(id),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(tenant_id)"),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  names,
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if ierr.As(err, &ccf) {
			return ierr.NewError("tenant not found").
				WithHintf("Tenant not found: %s", id).
				Mark(ierr.ErrNotFound)
		}
		return ierr.WithError(err).
			WithHint("Failed to apply subscription update").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *tenantRepository) MarkPaymentReceived(ctx context.Context, id string, paidAt time.Time) error {
	_, err := r.client.DB().UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 r.key(id),
		UpdateExpression:    aws.String("SET #st = :active, last_payment_at = :ts, updated_at = :ts"),
		ConditionExpression: aws.String("attribute_exists(tenant_id)"),
		ExpressionAttributeNames: map[string]string{
			"#st": "status",
		},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":active": &ddbtypes.AttributeValueMemberS{Value: string(types.TenantStatusActive)},
			":ts":     &ddbtypes.AttributeValueMemberS{Value: paidAt.UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *ddbtypes.ConditionalCheckFailedException
		if ierr.As(err, &ccf) {
			return ierr.NewError("tenant not found").
				WithHintf("Tenant not found: %s", id).
				Mark(ierr.ErrNotFound)
		}
		return ierr.WithError(err).
			WithHint("Failed to record payment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
