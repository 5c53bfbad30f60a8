package counter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI is the part of *dynamodb.Client the counter uses.
type DynamoDBAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

var _ Counter = (*DynamoDBCounter)(nil)

// DynamoDBCounter keeps the count in item {id: "visit_count"} of a table whose hash key is "id" (S).
type DynamoDBCounter struct {
	client DynamoDBAPI
	table  string
}

func NewDynamoDBCounter(client DynamoDBAPI, table string) *DynamoDBCounter {
	return &DynamoDBCounter{client: client, table: table}
}

func (c *DynamoDBCounter) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: VisitCountID},
	}
}

// Up issues ADD, which creates the item and the attribute when they are missing.
func (c *DynamoDBCounter) Up(ctx context.Context) (int64, error) {
	out, err := c.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(c.table),
		Key:              c.key(),
		UpdateExpression: aws.String("ADD #count :inc"),
		ExpressionAttributeNames: map[string]string{
			"#count": AttrCount,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, err
	}
	return parseCount(out.Attributes)
}

func (c *DynamoDBCounter) Get(ctx context.Context) (int64, error) {
	out, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(c.table),
		Key:                  c.key(),
		ConsistentRead:       aws.Bool(true),
		ProjectionExpression: aws.String("#count"),
		ExpressionAttributeNames: map[string]string{
			"#count": AttrCount,
		},
	})
	if err != nil {
		return 0, err
	}
	if len(out.Item) == 0 {
		return 0, nil
	}
	return parseCount(out.Item)
}

func parseCount(item map[string]types.AttributeValue) (int64, error) {
	av, ok := item[AttrCount]
	if !ok {
		return 0, fmt.Errorf("attribute %q missing from response", AttrCount)
	}
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("attribute %q is %T, want number", AttrCount, av)
	}
	v, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("strconv.ParseInt: %s=%q, %w", AttrCount, n.Value, err)
	}
	return v, nil
}
