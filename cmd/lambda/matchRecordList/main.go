package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
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
	roomId := event.PathParameters["roomId"]
	startKey, limit, err := extractScanParameters(roomId, event.QueryStringParameters)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest},
			fmt.Errorf("failed to extract parameters: %w", err)
	}
	records, lastEvaluatedKey, err := storageClient.FetchMatchRecords(ctx, roomId, startKey, limit)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError},
			fmt.Errorf("failed to fetch match records: %w", err)
	}

	resp := dtos.MatchRecordListResponseFromEntities(records)
	if lastEvaluatedKey != nil {
		matchId, _ := lastEvaluatedKey["matchId"].(*types.AttributeValueMemberS)
		endedAt, _ := lastEvaluatedKey["endedAt"].(*types.AttributeValueMemberS)
		if matchId != nil && endedAt != nil {
			resp.NextPageToken = &dtos.NextMatchRecordPageToken{
				MatchId: matchId.Value,
				EndedAt: endedAt.Value,
			}
		}
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError},
			fmt.Errorf("failed to marshal response: %w", err)
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: string(respJson)}, nil
}

func extractScanParameters(roomId string, params map[string]string) (map[string]types.AttributeValue, int32, error) {
	limit := int32(10)
	if raw, ok := params["limit"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, 0, fmt.Errorf("invalid limit: %q", raw)
		}
		limit = int32(min(n, 100))
	}
	matchId, hasMatchId := params["matchId"]
	endedAt, hasEndedAt := params["endedAt"]
	if !hasMatchId || !hasEndedAt {
		return nil, limit, nil
	}
	return map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchId},
		"roomId":  &types.AttributeValueMemberS{Value: roomId},
		"endedAt": &types.AttributeValueMemberS{Value: endedAt},
	}, limit, nil
}

func main() {
	lambda.Start(handler)
}
