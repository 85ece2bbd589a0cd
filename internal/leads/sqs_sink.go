package leads

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSSink enqueues events for asynchronous consumers.
type SQSSink struct {
	client   sqsAPI
	queueURL string
}

// NewSQSSink returns nil when the client or queue URL is missing.
func NewSQSSink(client sqsAPI, queueURL string) *SQSSink {
	if client == nil || queueURL == "" {
		return nil
	}
	return &SQSSink{client: client, queueURL: queueURL}
}

func (s *SQSSink) Name() string { return "sqs" }

func (s *SQSSink) Send(ctx context.Context, ev LeadEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("leads: marshal event: %w", err)
	}
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"intent": {DataType: aws.String("String"), StringValue: aws.String(ev.Intent)},
		},
	})
	if err != nil {
		return fmt.Errorf("leads: failed to send SQS message: %w", err)
	}
	return nil
}
