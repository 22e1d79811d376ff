package ledger

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// dynamoAPI covers the DynamoDB operations the store performs
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

/*
DynamoExpenseStore implements ExpenseStore on a DynamoDB table keyed by
company_id (partition) and date (sort), so a date range for one company is a
single key-condition query
*/
type DynamoExpenseStore struct {
	api   dynamoAPI
	table string
}

func NewDynamoExpenseStore(client *dynamodb.Client, table string) *DynamoExpenseStore {
	return &DynamoExpenseStore{
		api:   client,
		table: table,
	}
}

func (s *DynamoExpenseStore) Put(ctx context.Context, record ExpenseRecord) error {
	if record.CompanyID == "" || record.Date == "" {
		return fmt.Errorf("record is missing its identity")
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal expense record: %w", err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store expense record: %w", err)
	}
	return nil
}

func (s *DynamoExpenseStore) QueryRange(ctx context.Context, companyID string, startDate string, endDate string) ([]ExpenseRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("company_id = :cid AND #d BETWEEN :start AND :end"),
		ExpressionAttributeNames: map[string]string{
			"#d": "date",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid":   &types.AttributeValueMemberS{Value: companyID},
			":start": &types.AttributeValueMemberS{Value: startDate},
			":end":   &types.AttributeValueMemberS{Value: endDate},
		},
	}

	records := make([]ExpenseRecord, 0)
	for {
		output, err := s.api.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query expense records: %w", err)
		}

		page := make([]ExpenseRecord, 0, len(output.Items))
		if err = attributevalue.UnmarshalListOfMaps(output.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal expense records: %w", err)
		}
		records = append(records, page...)

		if output.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}
	return records, nil
}
