package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chess-vn/slgo/internal/aws/storage"
	"github.com/chess-vn/slgo/internal/domains/dtos"
)

var storageClient *storage.Client

func init() {
	cfg, _ := config.LoadDefaultConfig(context.TODO())
	storageClient = storage.NewClient(
		dynamodb.NewFromConfig(cfg),
		storage.DefaultConfig(),
	)
}

func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	matchId := event.PathParameters["id"]

	matchRecord, err := storageClient.GetMatchRecord(ctx, matchId)
	if err != nil {
		if errors.Is(err, storage.ErrMatchRecordNotFound) {
			return events.APIGatewayProxyResponse{StatusCode: http.StatusNotFound}, nil
		}
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError},
			fmt.Errorf("failed to get match record: %w", err)
	}

	matchRecordJson, err := json.Marshal(dtos.MatchRecordResponseFromEntity(matchRecord))
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError},
			fmt.Errorf("failed to marshal response: %w", err)
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: string(matchRecordJson)}, nil
}

func main() {
	lambda.Start(handler)
}
