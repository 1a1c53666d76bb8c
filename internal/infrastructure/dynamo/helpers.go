package dynamo

import (
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// eqQuery builds a query selecting items of index whose attr equals value.
// Attribute names go through a placeholder since several of ours are reserved words.
func eqQuery(table, index, attr, value string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
	}
}

// containsFilter returns the scan filter for a substring match on attr.
// An empty substring yields a nil filter.
func containsFilter(attr, substr string) (expr *string, names map[string]string, values map[string]types.AttributeValue) {
	if substr == "" {
		return nil, nil, nil
	}
	return aws.String("contains(#f, :kw)"),
		map[string]string{"#f": attr},
		map[string]types.AttributeValue{":kw": &types.AttributeValueMemberS{Value: substr}}
}

func capacityUnits(cc *types.ConsumedCapacity) float64 {
	if cc == nil || cc.CapacityUnits == nil {
		return 0
	}
	return *cc.CapacityUnits
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// sortKeyLayout is fixed-width so string order matches time order.
// time.RFC3339Nano trims trailing zeros and breaks that within a second.
const sortKeyLayout = "2006-01-02T15:04:05.000000000Z"

// sortKeyTime renders t as a range-key attribute in UTC.
func sortKeyTime(t time.Time) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: t.UTC().Format(sortKeyLayout)}
}
