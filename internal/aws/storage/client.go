package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

type Config struct {
	MatchRecordsTableName *string
	RoomIndexName         *string
}

func DefaultConfig() Config {
	return Config{
		MatchRecordsTableName: aws.String("MatchRecords"),
		RoomIndexName:         aws.String("RoomIndex"),
	}
}

type Client struct {
	dynamodb dynamoAPI
	cfg      Config
}

func NewClient(dynamoClient dynamoAPI, cfg Config) *Client {
	return &Client{
		dynamodb: dynamoClient,
		cfg:      cfg,
	}
}
