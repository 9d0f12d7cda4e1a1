// Package dynamo persists user records in DynamoDB. The users table
// uses a composite key of userId plus a fixed sort value so future
// per-user items can share the partition, and carries GSIs on email,
// schoolId and role for the lookup paths.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	goerrors "github.com/goliatone/go-errors"

	auth "github.com/brightpath/auth-service"
	"github.com/brightpath/auth-service/config"
)

const (
	emailIndex  = "email-index"
	schoolIndex = "school-index"
	roleIndex   = "role-index"
	stateIndex  = "state-index"
)

// Repository implements auth.UserRepository over four tables: users,
// schools, support tickets and sales prospects.
type Repository struct {
	client    *dynamodb.Client
	users     string
	schools   string
	tickets   string
	prospects string
	logger    auth.Logger
}

// New builds a Repository. Endpoint and credential handling mirror the
// Cognito store: overrides only apply when configured.
func New(ctx context.Context, cfg config.Config, logger auth.Logger) (*Repository, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load AWS configuration")
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
	})

	return &Repository{
		client:    client,
		users:     cfg.UsersTable,
		schools:   cfg.SchoolsTable,
		tickets:   cfg.TicketsTable,
		prospects: cfg.ProspectsTable,
		logger:    logger,
	}, nil
}

func userKey(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId":    &types.AttributeValueMemberS{Value: userID},
		"timestamp": &types.AttributeValueMemberS{Value: recordKind},
	}
}

// Create writes the user item, guarded so a duplicate userId surfaces
// as ErrUserExists rather than a silent overwrite.
func (r *Repository) Create(ctx context.Context, user *auth.User) (*auth.User, error) {
	item, err := attributevalue.MarshalMap(toRecord(user))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to marshal user record")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.users),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(userId)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, auth.ErrUserExists
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create user record")
	}
	return user, nil
}

func (r *Repository) GetByID(ctx context.Context, userID string) (*auth.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.users),
		Key:       userKey(userID),
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to read user record")
	}
	if out.Item == nil {
		return nil, nil
	}
	var record userRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal user record")
	}
	return record.toUser(), nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.users),
		IndexName:              aws.String(emailIndex),
		KeyConditionExpression: aws.String("email = :email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to query user by email")
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var record userRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &record); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal user record")
	}
	return record.toUser(), nil
}

// Update applies only the supplied fields via a generated SET
// expression and returns the post-write item. Field names are sorted
// so the expression is deterministic for a given field set.
func (r *Repository) Update(ctx context.Context, userID string, fields map[string]any) (*auth.User, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, userID)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	expr := "SET "
	attrNames := map[string]string{}
	attrValues := map[string]types.AttributeValue{}
	for i, name := range names {
		if i > 0 {
			expr += ", "
		}
		placeholder := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		expr += placeholder + " = " + valueKey

		attrNames[placeholder] = name
		value, err := attributevalue.Marshal(fields[name])
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to marshal update value")
		}
		attrValues[valueKey] = value
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.users),
		Key:                       userKey(userID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  attrNames,
		ExpressionAttributeValues: attrValues,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to update user record")
	}

	var record userRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &record); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal user record")
	}
	return record.toUser(), nil
}

func (r *Repository) TouchLastLogin(ctx context.Context, userID string) error {
	_, err := r.Update(ctx, userID, map[string]any{
		"lastLoginAt": auth.NowISO(),
		"updatedAt":   auth.NowISO(),
	})
	return err
}

func (r *Repository) Delete(ctx context.Context, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.users),
		Key:       userKey(userID),
	})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to delete user record")
	}
	return nil
}

func (r *Repository) ListBySchool(ctx context.Context, schoolID string) ([]*auth.User, error) {
	return r.queryUsers(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.users),
		IndexName:              aws.String(schoolIndex),
		KeyConditionExpression: aws.String("schoolId = :schoolId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":schoolId": &types.AttributeValueMemberS{Value: schoolID},
		},
	})
}

func (r *Repository) ListByRole(ctx context.Context, role auth.UserRole) ([]*auth.User, error) {
	return r.queryUsers(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.users),
		IndexName:              aws.String(roleIndex),
		KeyConditionExpression: aws.String("#r = :role"),
		ExpressionAttributeNames: map[string]string{
			"#r": "role",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":role": &types.AttributeValueMemberS{Value: string(role)},
		},
	})
}

func (r *Repository) queryUsers(ctx context.Context, input *dynamodb.QueryInput) ([]*auth.User, error) {
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to query user records")
	}
	return unmarshalUsers(out.Items)
}

// Search scans for a case-sensitive substring across email and name
// fields. Scan cost is acceptable at this tier's table sizes.
func (r *Repository) Search(ctx context.Context, term string, limit int) ([]*auth.User, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.users),
		FilterExpression: aws.String(
			"#ts = :kind AND (contains(email, :term) OR contains(firstName, :term) OR contains(lastName, :term))",
		),
		ExpressionAttributeNames: map[string]string{
			"#ts": "timestamp",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kind": &types.AttributeValueMemberS{Value: recordKind},
			":term": &types.AttributeValueMemberS{Value: term},
		},
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to search user records")
	}
	return unmarshalUsers(out.Items)
}

func (r *Repository) SetActive(ctx context.Context, userID string, active bool) (*auth.User, error) {
	return r.Update(ctx, userID, map[string]any{
		"isActive":  active,
		"updatedAt": auth.NowISO(),
	})
}

func unmarshalUsers(items []map[string]types.AttributeValue) ([]*auth.User, error) {
	var records []userRecord
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal user records")
	}
	users := make([]*auth.User, 0, len(records))
	for _, record := range records {
		users = append(users, record.toUser())
	}
	return users, nil
}

var _ auth.UserRepository = (*Repository)(nil)
