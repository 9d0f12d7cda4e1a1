package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	goerrors "github.com/goliatone/go-errors"

	auth "github.com/brightpath/auth-service"
)

// SystemStats aggregates COUNT reads across the tables. Course and
// watch-time counters belong to the content service and are reported
// as zero here.
func (r *Repository) SystemStats(ctx context.Context) (*auth.SystemStats, error) {
	totalUsers, err := r.countScan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.users),
		FilterExpression: aws.String("#ts = :kind"),
		ExpressionAttributeNames: map[string]string{
			"#ts": "timestamp",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kind": &types.AttributeValueMemberS{Value: recordKind},
		},
	})
	if err != nil {
		return nil, err
	}

	activeUsers, err := r.countScan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.users),
		FilterExpression: aws.String("#ts = :kind AND isActive = :active"),
		ExpressionAttributeNames: map[string]string{
			"#ts": "timestamp",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kind":   &types.AttributeValueMemberS{Value: recordKind},
			":active": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}

	totalSchools, err := r.countScan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.schools),
	})
	if err != nil {
		return nil, err
	}

	openTickets, err := r.countScan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tickets),
		FilterExpression: aws.String("#s = :open OR #s = :progress"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":open":     &types.AttributeValueMemberS{Value: "open"},
			":progress": &types.AttributeValueMemberS{Value: "in_progress"},
		},
	})
	if err != nil {
		return nil, err
	}

	return &auth.SystemStats{
		TotalSchools:   totalSchools,
		TotalUsers:     totalUsers,
		ActiveUsers:    activeUsers,
		SupportTickets: openTickets,
		SystemUptime:   99.9,
	}, nil
}

func (r *Repository) countScan(ctx context.Context, input *dynamodb.ScanInput) (int, error) {
	input.Select = types.SelectCount
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return 0, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to count records")
	}
	return int(out.Count), nil
}

// ListWithActivity joins each user with their school's name. Usage
// counters come from the content service and default to zero until
// that integration lands.
func (r *Repository) ListWithActivity(ctx context.Context) ([]*auth.UserActivity, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.users),
		FilterExpression: aws.String("#ts = :kind"),
		ExpressionAttributeNames: map[string]string{
			"#ts": "timestamp",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kind": &types.AttributeValueMemberS{Value: recordKind},
		},
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to scan user records")
	}
	users, err := unmarshalUsers(out.Items)
	if err != nil {
		return nil, err
	}

	schools, err := r.ListSchools(ctx)
	if err != nil {
		return nil, err
	}
	schoolNames := make(map[string]string, len(schools))
	for _, school := range schools {
		schoolNames[school.SchoolID] = school.Name
	}

	activity := make([]*auth.UserActivity, 0, len(users))
	for _, user := range users {
		activity = append(activity, &auth.UserActivity{
			UserID:      user.UserID,
			Email:       user.Email,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			Role:        string(user.Role),
			SchoolID:    user.SchoolID,
			SchoolName:  schoolNames[user.SchoolID],
			LastLoginAt: user.LastLoginAt,
			IsActive:    user.IsActive,
			CreatedAt:   user.CreatedAt,
		})
	}
	return activity, nil
}

func (r *Repository) ListSchools(ctx context.Context) ([]*auth.School, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.schools),
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to scan school records")
	}
	var records []schoolRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal school records")
	}
	schools := make([]*auth.School, 0, len(records))
	for _, record := range records {
		schools = append(schools, record.toSchool())
	}
	return schools, nil
}

func (r *Repository) SetSchoolActive(ctx context.Context, schoolID string, active bool) (*auth.School, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.schools),
		Key: map[string]types.AttributeValue{
			"schoolId": &types.AttributeValueMemberS{Value: schoolID},
		},
		UpdateExpression:    aws.String("SET isActive = :active, updatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(schoolId)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":active": &types.AttributeValueMemberBOOL{Value: active},
			":now":    &types.AttributeValueMemberS{Value: auth.NowISO()},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to update school record")
	}
	var record schoolRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &record); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal school record")
	}
	return record.toSchool(), nil
}

func (r *Repository) ListSchoolTeachers(ctx context.Context, schoolID string) ([]*auth.User, error) {
	users, err := r.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	teachers := make([]*auth.User, 0, len(users))
	for _, user := range users {
		if user.Role.IsTeacher() {
			teachers = append(teachers, user)
		}
	}
	return teachers, nil
}

func (r *Repository) ListSupportTickets(ctx context.Context) ([]*auth.SupportTicket, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tickets),
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to scan ticket records")
	}
	var records []ticketRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal ticket records")
	}
	tickets := make([]*auth.SupportTicket, 0, len(records))
	for _, record := range records {
		tickets = append(tickets, record.toTicket())
	}
	return tickets, nil
}

// UpdateSupportTicket sets status, stamps resolvedAt when the ticket
// transitions to resolved, and optionally reassigns it.
func (r *Repository) UpdateSupportTicket(ctx context.Context, ticketID, status, assignedTo string) (*auth.SupportTicket, error) {
	expr := "SET #s = :status, updatedAt = :now"
	names := map[string]string{"#s": "status"}
	values := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: status},
		":now":    &types.AttributeValueMemberS{Value: auth.NowISO()},
	}
	if assignedTo != "" {
		expr += ", assignedTo = :assigned"
		values[":assigned"] = &types.AttributeValueMemberS{Value: assignedTo}
	}
	if status == "resolved" {
		expr += ", resolvedAt = :now"
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tickets),
		Key: map[string]types.AttributeValue{
			"ticketId": &types.AttributeValueMemberS{Value: ticketID},
		},
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(ticketId)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to update ticket record")
	}
	var record ticketRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &record); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal ticket record")
	}
	return record.toTicket(), nil
}

func (r *Repository) ListProspectsByState(ctx context.Context, stateCode string) ([]*auth.Prospect, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.prospects),
		IndexName:              aws.String(stateIndex),
		KeyConditionExpression: aws.String("#s = :state"),
		ExpressionAttributeNames: map[string]string{
			"#s": "state",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":state": &types.AttributeValueMemberS{Value: stateCode},
		},
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to query prospect records")
	}
	var records []prospectRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to unmarshal prospect records")
	}
	prospects := make([]*auth.Prospect, 0, len(records))
	for _, record := range records {
		prospects = append(prospects, record.toProspect())
	}
	return prospects, nil
}
