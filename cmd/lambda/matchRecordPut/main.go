package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chess-vn/slgo/internal/aws/storage"
	"github.com/chess-vn/slgo/internal/domains/dtos"
	"github.com/chess-vn/slgo/pkg/logging"
	"go.uber.org/zap"
)

var storageClient *storage.Client

func init() {
	cfg, _ := config.LoadDefaultConfig(context.TODO())
	storageClient = storage.NewClient(
		dynamodb.NewFromConfig(cfg),
		storage.DefaultConfig(),
	)
	_ = logging.Init(logging.Config{Format: "json"})
}

func handler(ctx context.Context, event json.RawMessage) error {
	var req dtos.MatchRecordRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return fmt.Errorf("failed to unmarshal request: %w", err)
	}
	if req.MatchId == "" {
		return fmt.Errorf("missing match id")
	}

	record := dtos.MatchRecordRequestToEntity(req)
	if err := storageClient.PutMatchRecord(ctx, record); err != nil {
		logging.Error("failed to save match record", zap.String("match_id", req.MatchId), zap.Error(err))
		return err
	}
	logging.Info("match record saved", zap.String("match_id", req.MatchId))
	return nil
}

func main() {
	lambda.Start(handler)
}
