package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chess-vn/slgo/internal/domains/entities"
)

var ErrMatchRecordNotFound = errors.New("match record not found")

func (client *Client) PutMatchRecord(ctx context.Context, record entities.MatchRecord) error {
	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: client.cfg.MatchRecordsTableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put match record: %w", err)
	}
	return nil
}

func (client *Client) GetMatchRecord(ctx context.Context, matchId string) (entities.MatchRecord, error) {
	output, err := client.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: client.cfg.MatchRecordsTableName,
		Key: map[string]types.AttributeValue{
			"matchId": &types.AttributeValueMemberS{
				Value: matchId,
			},
		},
	})
	if err != nil {
		return entities.MatchRecord{}, err
	}
	if output.Item == nil {
		return entities.MatchRecord{}, ErrMatchRecordNotFound
	}
	var record entities.MatchRecord
	if err := attributevalue.UnmarshalMap(output.Item, &record); err != nil {
		return entities.MatchRecord{}, err
	}
	return record, nil
}

// FetchMatchRecords pages through a room's records, newest first.
func (client *Client) FetchMatchRecords(
	ctx context.Context,
	roomId string,
	lastKey map[string]types.AttributeValue,
	limit int32,
) (
	[]entities.MatchRecord,
	map[string]types.AttributeValue,
	error,
) {
	output, err := client.dynamodb.Query(ctx, &dynamodb.QueryInput{
		TableName:              client.cfg.MatchRecordsTableName,
		IndexName:              client.cfg.RoomIndexName,
		KeyConditionExpression: aws.String("roomId = :roomId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":roomId": &types.AttributeValueMemberS{Value: roomId},
		},
		ExclusiveStartKey: lastKey,
		ScanIndexForward:  aws.Bool(false),
		Limit:             aws.Int32(limit),
	})
	if err != nil {
		return nil, nil, err
	}
	var records []entities.MatchRecord
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &records); err != nil {
		return nil, nil, err
	}
	return records, output.LastEvaluatedKey, nil
}
