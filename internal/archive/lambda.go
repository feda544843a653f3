package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/chess-vn/slgo/internal/domains/dtos"
	"github.com/chess-vn/slgo/internal/domains/entities"
)

type lambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaNotifier hands records to a function asynchronously, which stores
// them in DynamoDB.
type LambdaNotifier struct {
	client       lambdaInvoker
	functionName string
}

func NewLambdaNotifier(ctx context.Context, functionName, region string) (*LambdaNotifier, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &LambdaNotifier{
		client:       lambda.NewFromConfig(cfg),
		functionName: functionName,
	}, nil
}

func (n *LambdaNotifier) SaveMatchRecord(ctx context.Context, record entities.MatchRecord) error {
	payload, err := json.Marshal(dtos.MatchRecordRequestFromEntity(record))
	if err != nil {
		return err
	}
	input := &lambda.InvokeInput{
		FunctionName:   aws.String(n.functionName),
		Payload:        payload,
		InvocationType: types.InvocationTypeEvent,
	}
	if _, err := n.client.Invoke(ctx, input); err != nil {
		return fmt.Errorf("invoke %s: %w", n.functionName, err)
	}
	return nil
}
